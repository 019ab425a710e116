// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the adoption marketplace. A protectora
// (shelter) is a user with IsStaff set; a freshly registered protectora stays
// inactive until an admin approves it. Admins are superusers.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"unique;not null" json:"username"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Profile  *AdopterProfile     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Approval *ProtectoraApproval `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"approval,omitempty"`
}

// Role returns the public-facing role string used by the frontend.
func (u *User) Role() string {
	if u.IsStaff {
		return "protectora"
	}
	return "adoptante"
}

// ProtectoraApproval tracks admin approval of a shelter account. It exists
// only for staff users. Approved is never reset once granted; blocking a
// protectora only flips User.IsActive.
type ProtectoraApproval struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Approved  bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ProtectoraApproval) TableName() string {
	return "protectora_approvals"
}

// AdopterProfile holds the extended profile created alongside every user.
// Creation happens in the same transaction as the user row, so a user without
// a profile cannot exist.
type AdopterProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Avatar       string    `json:"avatar"`
	Location     string    `json:"location"`
	PhoneNumber  string    `json:"phone_number"`
	Bio          string    `json:"bio"`
	AdoptionForm JSONMap   `json:"adoption_form"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Favorites []Animal `gorm:"many2many:profile_favorites;constraint:OnDelete:CASCADE" json:"favorites,omitempty"`
}

// TableName specifies the table name for GORM
func (AdopterProfile) TableName() string {
	return "adopter_profiles"
}
