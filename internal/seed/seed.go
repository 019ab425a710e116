// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumShelters       int
	NumAdopters       int
	AnimalsPerShelter int
	ShouldClean       bool
}

// Run populates the database with demo shelters, adopters, animals, adoption
// requests and donations.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumShelters <= 0 {
		opts.NumShelters = 5
	}
	if opts.NumAdopters <= 0 {
		opts.NumAdopters = 20
	}
	if opts.AnimalsPerShelter <= 0 {
		opts.AnimalsPerShelter = 8
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	f := NewFactory(db)

	shelters, err := f.CreateShelters(opts.NumShelters)
	if err != nil {
		return fmt.Errorf("seed shelters: %w", err)
	}
	adopters, err := f.CreateAdopters(opts.NumAdopters)
	if err != nil {
		return fmt.Errorf("seed adopters: %w", err)
	}

	var totalAnimals int
	for _, shelter := range shelters {
		animals, err := f.CreateAnimals(shelter, opts.AnimalsPerShelter)
		if err != nil {
			return fmt.Errorf("seed animals: %w", err)
		}
		totalAnimals += len(animals)

		if err := f.CreateRequests(animals, adopters); err != nil {
			return fmt.Errorf("seed requests: %w", err)
		}
	}

	if err := f.CreateDonations(adopters); err != nil {
		return fmt.Errorf("seed donations: %w", err)
	}

	log.Printf("seeded %d shelters, %d adopters, %d animals",
		len(shelters), len(adopters), totalAnimals)
	return nil
}

func clean(db *gorm.DB) error {
	// Order respects FK dependencies.
	for _, table := range []string{
		"profile_favorites",
		"adoption_requests",
		"donations",
		"contact_messages",
		"animals",
		"adopter_profiles",
		"protectora_approvals",
		"users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
