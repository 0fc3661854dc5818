package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/models"
)

const fixture = `
admin:
  name: Root
  phone_number: "+243820000000"
  password: changeme
hotels:
  - name: Fleuve Congo
    address: 119 Avenue Colonel Mondjiba
    city: Kinshasa
    price_per_night: 120
    latitude: -4.325
    longitude: 15.322
    rating: 4.5
    manager:
      name: Mireille
      phone_number: "+243820000010"
      password: hotelpass
    rooms:
      - room_number: "101"
        capacity: 2
        price_per_night: 120
      - room_number: "102"
        capacity: 4
        price_per_night: 180
restaurants:
  - name: Chez Ntemba
    address: Avenue de la Justice
    latitude: -4.31
    longitude: 15.30
    rating: 4.1
    manager:
      name: Patrice
      phone_number: "+243820000020"
      password: restopass
    menus:
      - name: Poulet moambe
        category: main
        price: 12.5
      - name: Liboke
        category: main
        price: 10
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

func TestLoadParsesFixture(t *testing.T) {
	catalog, err := Load(writeFixture(t))
	require.NoError(t, err)

	require.NotNil(t, catalog.Admin)
	assert.Equal(t, "+243820000000", catalog.Admin.PhoneNumber)
	require.Len(t, catalog.Hotels, 1)
	assert.Len(t, catalog.Hotels[0].Rooms, 2)
	require.Len(t, catalog.Restaurants, 1)
	assert.Len(t, catalog.Restaurants[0].Menus, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestApplyCreatesCatalog(t *testing.T) {
	db := newTestDB(t)
	catalog, err := Load(writeFixture(t))
	require.NoError(t, err)

	require.NoError(t, Apply(db, catalog, zerolog.Nop()))

	var admin models.User
	require.NoError(t, db.Where("phone_number = ?", "+243820000000").First(&admin).Error)
	assert.Equal(t, access.RoleAdmin, admin.Role)
	assert.NotEmpty(t, admin.PasswordHash)

	var hotel models.Hotel
	require.NoError(t, db.Preload("Rooms").Where("name = ?", "Fleuve Congo").First(&hotel).Error)
	assert.Len(t, hotel.Rooms, 2)

	var manager models.User
	require.NoError(t, models.FindByID(db, hotel.OwnerID, &manager))
	assert.Equal(t, access.RoleHotelManager, manager.Role)

	var menus int64
	require.NoError(t, db.Model(&models.Menu{}).Count(&menus).Error)
	assert.EqualValues(t, 2, menus)
}

func TestApplyIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	catalog, err := Load(writeFixture(t))
	require.NoError(t, err)

	require.NoError(t, Apply(db, catalog, zerolog.Nop()))
	require.NoError(t, Apply(db, catalog, zerolog.Nop()))

	var users, hotels, rooms, restaurants int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Hotel{}).Count(&hotels)
	db.Model(&models.Room{}).Count(&rooms)
	db.Model(&models.Restaurant{}).Count(&restaurants)

	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 1, hotels)
	assert.EqualValues(t, 2, rooms)
	assert.EqualValues(t, 1, restaurants)
}
