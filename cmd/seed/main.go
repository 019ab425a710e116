// Command seed populates the database with demo data for development.
package main

import (
	"flag"
	"log"

	"refugio/internal/config"
	"refugio/internal/database"
	"refugio/internal/seed"
)

func main() {
	numShelters := flag.Int("shelters", 5, "Number of protectora accounts to create")
	numAdopters := flag.Int("adopters", 20, "Number of adopter accounts to create")
	animalsPerShelter := flag.Int("animals", 8, "Number of animals per protectora")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Printf("Seeding: %d shelters, %d adopters, %d animals each, clean=%v",
		*numShelters, *numAdopters, *animalsPerShelter, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumShelters:       *numShelters,
		NumAdopters:       *numAdopters,
		AnimalsPerShelter: *animalsPerShelter,
		ShouldClean:       *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done. Demo accounts use the password RefugioDemo12!")
}
