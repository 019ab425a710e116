package models

import "time"

// Donation is a monetary contribution from a user. Anonymous donations keep
// the user reference but hide the username in public listings.
type Donation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Amount    float64   `gorm:"not null" json:"cantidad"`
	Anonymous bool      `gorm:"not null;default:false" json:"anonimo"`
	CreatedAt time.Time `json:"fecha"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Donation) TableName() string {
	return "donations"
}

// DonationView is the public listing shape. DisplayUser is "Anonimo" for
// anonymous donations and the real username otherwise.
type DonationView struct {
	ID          uint      `json:"id"`
	Username    string    `json:"usuario"`
	DisplayUser string    `json:"display_usuario"`
	Amount      float64   `json:"cantidad"`
	Anonymous   bool      `json:"anonimo"`
	CreatedAt   time.Time `json:"fecha"`
}

// View renders the donation for public consumption. Anonymous donations do
// not leak the username in either field.
func (d *Donation) View() DonationView {
	username := d.User.Username
	display := username
	if d.Anonymous {
		username = ""
		display = "Anonimo"
	}
	return DonationView{
		ID:          d.ID,
		Username:    username,
		DisplayUser: display,
		Amount:      d.Amount,
		Anonymous:   d.Anonymous,
		CreatedAt:   d.CreatedAt,
	}
}
