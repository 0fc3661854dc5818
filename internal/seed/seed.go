// Package seed loads the initial catalog (admin account, managers, hotels,
// restaurants) from a YAML fixture file. Applying a fixture twice is safe:
// records are matched by phone number or name before being created.
package seed

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/auth"
	"github.com/facilite-dev/facilite/internal/models"
)

// Catalog is the root of a seed fixture file.
type Catalog struct {
	Admin       *Account            `yaml:"admin"`
	Hotels      []HotelFixture      `yaml:"hotels"`
	Restaurants []RestaurantFixture `yaml:"restaurants"`
}

// Account describes a user to create with a role and optional password.
type Account struct {
	Name        string `yaml:"name"`
	PhoneNumber string `yaml:"phone_number"`
	Password    string `yaml:"password"`
	Email       string `yaml:"email"`
}

// HotelFixture describes a hotel with its manager and rooms.
type HotelFixture struct {
	Name          string        `yaml:"name"`
	Address       string        `yaml:"address"`
	City          string        `yaml:"city"`
	PricePerNight float64       `yaml:"price_per_night"`
	Latitude      *float64      `yaml:"latitude"`
	Longitude     *float64      `yaml:"longitude"`
	Rating        float64       `yaml:"rating"`
	Manager       Account       `yaml:"manager"`
	Rooms         []RoomFixture `yaml:"rooms"`
}

// RoomFixture describes a room within a hotel fixture.
type RoomFixture struct {
	RoomNumber    string  `yaml:"room_number"`
	Capacity      int     `yaml:"capacity"`
	PricePerNight float64 `yaml:"price_per_night"`
}

// RestaurantFixture describes a restaurant with its manager and menu.
type RestaurantFixture struct {
	Name      string        `yaml:"name"`
	Address   string        `yaml:"address"`
	Latitude  *float64      `yaml:"latitude"`
	Longitude *float64      `yaml:"longitude"`
	Rating    float64       `yaml:"rating"`
	Manager   Account       `yaml:"manager"`
	Menus     []MenuFixture `yaml:"menus"`
}

// MenuFixture describes a dish within a restaurant fixture.
type MenuFixture struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Category    string  `yaml:"category"`
	Price       float64 `yaml:"price"`
	ImageURL    string  `yaml:"image_url"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return &catalog, nil
}

// Apply creates the catalog's records, skipping any that already exist.
func Apply(db *gorm.DB, catalog *Catalog, logger zerolog.Logger) error {
	if catalog.Admin != nil {
		if _, err := ensureUser(db, *catalog.Admin, access.RoleAdmin); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	for _, fixture := range catalog.Hotels {
		manager, err := ensureUser(db, fixture.Manager, access.RoleHotelManager)
		if err != nil {
			return fmt.Errorf("failed to seed hotel manager %q: %w", fixture.Manager.PhoneNumber, err)
		}

		hotel := models.Hotel{
			OwnerID:       manager.ID,
			Name:          fixture.Name,
			Address:       fixture.Address,
			City:          fixture.City,
			PricePerNight: fixture.PricePerNight,
			Latitude:      fixture.Latitude,
			Longitude:     fixture.Longitude,
			Rating:        fixture.Rating,
		}
		if err := db.Where("name = ?", fixture.Name).FirstOrCreate(&hotel).Error; err != nil {
			return fmt.Errorf("failed to seed hotel %q: %w", fixture.Name, err)
		}

		for _, roomFixture := range fixture.Rooms {
			room := models.Room{
				HotelID:       hotel.ID,
				RoomNumber:    roomFixture.RoomNumber,
				Capacity:      roomFixture.Capacity,
				PricePerNight: roomFixture.PricePerNight,
			}
			if err := db.Where("hotel_id = ? AND room_number = ?", hotel.ID, roomFixture.RoomNumber).
				FirstOrCreate(&room).Error; err != nil {
				return fmt.Errorf("failed to seed room %q: %w", roomFixture.RoomNumber, err)
			}
		}

		logger.Debug().Str("hotel", fixture.Name).Int("rooms", len(fixture.Rooms)).Msg("Seeded hotel")
	}

	for _, fixture := range catalog.Restaurants {
		manager, err := ensureUser(db, fixture.Manager, access.RoleRestaurantManager)
		if err != nil {
			return fmt.Errorf("failed to seed restaurant manager %q: %w", fixture.Manager.PhoneNumber, err)
		}

		restaurant := models.Restaurant{
			OwnerID:   manager.ID,
			Name:      fixture.Name,
			Address:   fixture.Address,
			Latitude:  fixture.Latitude,
			Longitude: fixture.Longitude,
			Rating:    fixture.Rating,
		}
		if err := db.Where("name = ?", fixture.Name).FirstOrCreate(&restaurant).Error; err != nil {
			return fmt.Errorf("failed to seed restaurant %q: %w", fixture.Name, err)
		}

		for _, menuFixture := range fixture.Menus {
			menu := models.Menu{
				RestaurantID: restaurant.ID,
				Name:         menuFixture.Name,
				Description:  menuFixture.Description,
				Category:     menuFixture.Category,
				Price:        menuFixture.Price,
				ImageURL:     menuFixture.ImageURL,
			}
			if err := db.Where("restaurant_id = ? AND name = ?", restaurant.ID, menuFixture.Name).
				FirstOrCreate(&menu).Error; err != nil {
				return fmt.Errorf("failed to seed menu %q: %w", menuFixture.Name, err)
			}
		}

		logger.Debug().Str("restaurant", fixture.Name).Int("menus", len(fixture.Menus)).Msg("Seeded restaurant")
	}

	return nil
}

func ensureUser(db *gorm.DB, account Account, role access.Role) (*models.User, error) {
	var existing models.User
	err := db.Where("phone_number = ?", account.PhoneNumber).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user := models.User{
		Name:        account.Name,
		PhoneNumber: account.PhoneNumber,
		Email:       account.Email,
		Role:        role,
		IsActive:    true,
	}
	if account.Password != "" {
		hash, err := auth.HashPassword(account.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
