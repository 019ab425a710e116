package seed

import (
	"fmt"
	"math/rand"
	"time"

	"refugio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// spanishCities anchors seeded coordinates so the radius filter has
// something meaningful to chew on in development.
var spanishCities = []struct {
	Name string
	Lat  float64
	Lng  float64
}{
	{"Madrid", 40.4168, -3.7038},
	{"Barcelona", 41.3874, 2.1686},
	{"Valencia", 39.4699, -0.3763},
	{"Sevilla", 37.3891, -5.9845},
	{"Zaragoza", 41.6488, -0.8891},
	{"Bilbao", 43.2630, -2.9350},
	{"Granada", 37.1773, -3.5986},
}

var species = []struct {
	Species string
	Breeds  []string
}{
	{"dog", []string{"Mestizo", "Labrador", "Podenco", "Galgo", "Pastor Alemán", "Bodeguero"}},
	{"cat", []string{"Europeo", "Siamés", "Persa", "Común"}},
	{"rabbit", []string{"Belier", "Cabeza de León"}},
}

const seedPassword = "RefugioDemo12!"

func (f *Factory) hashedPassword() string {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	return string(hashed)
}

// CreateShelters persists approved, active protectora accounts.
func (f *Factory) CreateShelters(n int) ([]*models.User, error) {
	shelters := make([]*models.User, 0, n)
	password := f.hashedPassword()

	for i := 0; i < n; i++ {
		city := spanishCities[f.r.Intn(len(spanishCities))]
		user := &models.User{
			Username: fmt.Sprintf("refugio_%s_%d", gofakeit.Word(), f.r.Intn(10000)),
			Email:    gofakeit.Email(),
			Password: password,
			IsStaff:  true,
			IsActive: true,
			Profile:  &models.AdopterProfile{Location: city.Name},
			Approval: &models.ProtectoraApproval{Approved: true},
		}
		if err := f.db.Create(user).Error; err != nil {
			return nil, err
		}
		shelters = append(shelters, user)
	}
	return shelters, nil
}

// CreateAdopters persists active adopter accounts with profiles.
func (f *Factory) CreateAdopters(n int) ([]*models.User, error) {
	adopters := make([]*models.User, 0, n)
	password := f.hashedPassword()

	for i := 0; i < n; i++ {
		city := spanishCities[f.r.Intn(len(spanishCities))]
		user := &models.User{
			Username:  fmt.Sprintf("%s_%d", gofakeit.Username(), f.r.Intn(10000)),
			Email:     gofakeit.Email(),
			Password:  password,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			IsActive:  true,
			Profile: &models.AdopterProfile{
				Location:    city.Name,
				PhoneNumber: gofakeit.Phone(),
				Bio:         gofakeit.Sentence(12),
			},
		}
		if err := f.db.Create(user).Error; err != nil {
			return nil, err
		}
		adopters = append(adopters, user)
	}
	return adopters, nil
}

// CreateAnimals persists animals owned by the shelter, jittered around a
// random Spanish city.
func (f *Factory) CreateAnimals(shelter *models.User, n int) ([]*models.Animal, error) {
	animals := make([]*models.Animal, 0, n)

	for i := 0; i < n; i++ {
		sp := species[f.r.Intn(len(species))]
		city := spanishCities[f.r.Intn(len(spanishCities))]
		lat := city.Lat + (f.r.Float64()-0.5)*0.2
		lng := city.Lng + (f.r.Float64()-0.5)*0.2

		animal := &models.Animal{
			Name:      gofakeit.PetName(),
			Age:       fmt.Sprintf("%d años", 1+f.r.Intn(12)),
			Gender:    pick(f.r, models.AnimalGenderMale, models.AnimalGenderFemale),
			Size:      pick(f.r, models.AnimalSizeSmall, models.AnimalSizeMedium, models.AnimalSizeLarge),
			Activity:  pick(f.r, models.AnimalActivityLow, models.AnimalActivityMedium, models.AnimalActivityHigh),
			City:      city.Name,
			Biography: gofakeit.Paragraph(1, 2, 8, " "),
			Species:   sp.Species,
			Breed:     sp.Breeds[f.r.Intn(len(sp.Breeds))],
			Weight:    1 + f.r.Float64()*40,
			Shelter:   shelter.Username,
			Since:     time.Now().AddDate(0, -f.r.Intn(24), 0),

			Vaccinated:   f.r.Intn(10) > 1,
			Sterilized:   f.r.Intn(10) > 3,
			Microchipped: f.r.Intn(10) > 2,
			Dewormed:     f.r.Intn(10) > 1,

			Image:     fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			Latitude:  &lat,
			Longitude: &lng,
			OwnerID:   shelter.ID,
		}
		if err := f.db.Create(animal).Error; err != nil {
			return nil, err
		}
		animals = append(animals, animal)
	}
	return animals, nil
}

// CreateRequests spreads a few adoption requests over the given animals.
func (f *Factory) CreateRequests(animals []*models.Animal, adopters []*models.User) error {
	if len(adopters) == 0 {
		return nil
	}
	for _, animal := range animals {
		for _, adopter := range adopters {
			if f.r.Intn(10) > 2 {
				continue
			}
			request := &models.AdoptionRequest{
				UserID:   adopter.ID,
				AnimalID: animal.ID,
				FormData: models.JSONMap{
					"vivienda":    pick(f.r, "piso", "casa", "casa con jardín"),
					"experiencia": f.r.Intn(2) == 0,
					"motivo":      gofakeit.Sentence(8),
				},
			}
			if err := f.db.Create(request).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateDonations records a donation from roughly half the adopters.
func (f *Factory) CreateDonations(adopters []*models.User) error {
	for _, adopter := range adopters {
		if f.r.Intn(2) == 0 {
			continue
		}
		donation := &models.Donation{
			UserID:    adopter.ID,
			Amount:    float64(5 + f.r.Intn(100)),
			Anonymous: f.r.Intn(3) == 0,
		}
		if err := f.db.Create(donation).Error; err != nil {
			return err
		}
	}
	return nil
}

func pick[T any](r *rand.Rand, options ...T) T {
	return options[r.Intn(len(options))]
}
