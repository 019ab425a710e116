package models

import (
	"time"
)

// AnimalGender enumerates accepted gender values.
type AnimalGender string

const (
	AnimalGenderMale   AnimalGender = "male"
	AnimalGenderFemale AnimalGender = "female"
)

// AnimalSize enumerates accepted size values.
type AnimalSize string

const (
	AnimalSizeSmall  AnimalSize = "small"
	AnimalSizeMedium AnimalSize = "medium"
	AnimalSizeLarge  AnimalSize = "large"
)

// AnimalActivity enumerates accepted activity levels.
type AnimalActivity string

const (
	AnimalActivityLow    AnimalActivity = "low"
	AnimalActivityMedium AnimalActivity = "medium"
	AnimalActivityHigh   AnimalActivity = "high"
)

// Animal is an adoptable animal listed by a protectora. AdopterID nil means
// the animal is available. Owner deletion removes the animal; adopter deletion
// only clears the reference.
type Animal struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Age       string         `gorm:"size:50" json:"age"`
	Gender    AnimalGender   `gorm:"type:varchar(10);default:'male'" json:"gender"`
	Size      AnimalSize     `gorm:"type:varchar(10);default:'medium'" json:"size"`
	Activity  AnimalActivity `gorm:"type:varchar(10);default:'low'" json:"activity"`
	City      string         `gorm:"size:100" json:"city"`
	Biography string         `gorm:"type:text" json:"biography"`
	Species   string         `gorm:"size:50" json:"species"`
	Breed     string         `gorm:"size:100" json:"breed"`
	Weight    float64        `json:"weight"`

	Characteristics JSONMap `json:"characteristics"`

	Shelter string    `gorm:"size:150" json:"shelter"`
	Since   time.Time `json:"since"`

	Vaccinated   bool `gorm:"not null;default:false" json:"vaccinated"`
	Sterilized   bool `gorm:"not null;default:false" json:"sterilized"`
	Microchipped bool `gorm:"not null;default:false" json:"microchipped"`
	Dewormed     bool `gorm:"not null;default:false" json:"dewormed"`

	Image       string  `json:"image"`
	ExtraImages JSONMap `json:"extra_images"`

	// Nullable: animals without coordinates are skipped by radius filtering.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	OwnerID   uint  `gorm:"not null;index" json:"owner"`
	AdopterID *uint `gorm:"index" json:"adopter"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Owner   User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Adopter *User `gorm:"foreignKey:AdopterID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for GORM
func (Animal) TableName() string {
	return "animals"
}

// Available reports whether the animal has no adopter assigned.
func (a *Animal) Available() bool {
	return a.AdopterID == nil
}
