package database

import "refugio/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ProtectoraApproval{},
		&models.AdopterProfile{},
		&models.Animal{},
		&models.AdoptionRequest{},
		&models.Donation{},
		&models.ContactMessage{},
	}
}
