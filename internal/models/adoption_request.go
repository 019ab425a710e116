package models

import "time"

// AdoptionRequest records an adopter's interest in an animal together with the
// submitted intake form. The (user, animal) pair is unique; resubmission
// updates FormData in place instead of creating a second row.
type AdoptionRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_adoption_request_user_animal" json:"user_id"`
	AnimalID  uint      `gorm:"not null;uniqueIndex:idx_adoption_request_user_animal" json:"animal_id"`
	FormData  JSONMap   `json:"form_data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Animal Animal `gorm:"foreignKey:AnimalID;constraint:OnDelete:CASCADE" json:"animal,omitempty"`
}

// TableName specifies the table name for GORM
func (AdoptionRequest) TableName() string {
	return "adoption_requests"
}
