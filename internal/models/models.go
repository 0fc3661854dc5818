package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a platform account. Clients authenticate by phone number
// alone; managers, couriers and admins carry a password hash.
type User struct {
	BaseModel
	Name         string      `json:"name" gorm:"not null"`
	PhoneNumber  string      `json:"phone_number" gorm:"unique;not null"`
	Email        string      `json:"email,omitempty"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role" gorm:"type:varchar(32);not null;default:client"`
	IsActive     bool        `json:"is_active" gorm:"not null;default:true"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasManagerLogin reports whether the account may use the password login
// endpoint. Clients authenticate by phone number only; every staff role
// (admins, venue managers, couriers) carries a password.
func (u *User) HasManagerLogin() bool {
	return u.Role != access.RoleClient && u.Role.Valid()
}

// Hotel represents a bookable hotel, owned by a hotel_manager account
type Hotel struct {
	BaseModel
	OwnerID       string   `json:"owner_id" gorm:"not null"`
	Name          string   `json:"name" gorm:"not null"`
	Address       string   `json:"address" gorm:"not null"`
	City          string   `json:"city"`
	PricePerNight float64  `json:"price_per_night" gorm:"not null"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Rating        float64  `json:"rating" gorm:"not null;default:0"`

	Owner        *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:SET NULL"`
	Rooms        []Room        `json:"rooms,omitempty" gorm:"foreignKey:HotelID"`
	Reservations []Reservation `json:"reservations,omitempty" gorm:"foreignKey:HotelID"`
}

// Room is a bookable room within a hotel
type Room struct {
	BaseModel
	HotelID       string  `json:"hotel_id" gorm:"not null"`
	RoomNumber    string  `json:"room_number" gorm:"not null"`
	Capacity      int     `json:"capacity" gorm:"not null"`
	PricePerNight float64 `json:"price_per_night" gorm:"not null"`

	Hotel Hotel `json:"hotel,omitzero" gorm:"foreignKey:HotelID;constraint:OnDelete:CASCADE"`
}

// Restaurant represents a restaurant, owned by a restaurant_manager account
type Restaurant struct {
	BaseModel
	OwnerID   string   `json:"owner_id" gorm:"not null"`
	Name      string   `json:"name" gorm:"not null"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Rating    float64  `json:"rating" gorm:"not null;default:0"`

	Owner *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:SET NULL"`
	Menus []Menu `json:"menus,omitempty" gorm:"foreignKey:RestaurantID"`
}

// Menu is a dish on a restaurant's menu
type Menu struct {
	BaseModel
	RestaurantID string  `json:"restaurant_id" gorm:"not null"`
	Name         string  `json:"name" gorm:"not null"`
	Description  string  `json:"description"`
	Category     string  `json:"category"` // starter, main, dessert
	Price        float64 `json:"price" gorm:"not null"`
	ImageURL     string  `json:"image_url"`

	Restaurant Restaurant `json:"restaurant,omitzero" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
}

// Reservation is a hotel stay booked by a client. TotalPrice is nights times
// the hotel's nightly rate, computed server-side at creation.
type Reservation struct {
	BaseModel
	UserID     string    `json:"user_id" gorm:"not null"`
	HotelID    string    `json:"hotel_id" gorm:"not null"`
	CheckIn    time.Time `json:"check_in" gorm:"not null"`
	CheckOut   time.Time `json:"check_out" gorm:"not null"`
	TotalPrice float64   `json:"total_price" gorm:"not null"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`

	User  *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Hotel Hotel `json:"hotel,omitzero" gorm:"foreignKey:HotelID;constraint:OnDelete:CASCADE"`
}

// Order is a food order placed by a client with a restaurant
type Order struct {
	BaseModel
	UserID       string   `json:"user_id" gorm:"not null"`
	RestaurantID string   `json:"restaurant_id" gorm:"not null"`
	Total        float64  `json:"total" gorm:"not null;default:0"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`

	Items      []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Restaurant Restaurant  `json:"restaurant,omitzero" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	Delivery   *Delivery   `json:"delivery,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a line item of an order
type OrderItem struct {
	BaseModel
	OrderID  string `json:"order_id" gorm:"not null"`
	MenuID   string `json:"menu_id" gorm:"not null"`
	Quantity int    `json:"quantity" gorm:"not null"`

	Menu Menu `json:"menu,omitzero" gorm:"foreignKey:MenuID"`
}

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Payment records a payment against an order or a reservation. Settlement is
// asynchronous: a payment is created pending and the worker resolves it.
type Payment struct {
	BaseModel
	UserID        string  `json:"user_id" gorm:"not null"`
	OrderID       *string `json:"order_id"`
	ReservationID *string `json:"reservation_id"`
	Amount        float64 `json:"amount" gorm:"not null"`

	// Flat platform fee plus the gateway's cut, deducted from Amount
	NetAmount  float64 `json:"net_amount" gorm:"not null"`
	Commission float64 `json:"commission" gorm:"not null;default:0"`
	Discount   float64 `json:"discount" gorm:"not null;default:0"`

	Method          string     `json:"payment_method" gorm:"not null;default:cash"`
	Status          string     `json:"status" gorm:"not null;default:pending"`
	TransactionCode string     `json:"transaction_code" gorm:"unique;not null"`
	SettledAt       *time.Time `json:"settled_at"`

	// Single-use QR receipt, generated on successful settlement
	IsUsed bool   `json:"is_used" gorm:"not null;default:false"`
	QRPath string `json:"qr_path,omitempty"`

	User        *User        `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Order       *Order       `json:"order,omitempty" gorm:"foreignKey:OrderID;references:ID"`
	Reservation *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID;references:ID"`
}

// Delivery statuses
const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusAccepted   = "accepted"
	DeliveryStatusInProgress = "in_progress"
	DeliveryStatusDelivered  = "delivered"
	DeliveryStatusCancelled  = "cancelled"
)

// ValidDeliveryStatus reports whether s is a known delivery status.
func ValidDeliveryStatus(s string) bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusAccepted, DeliveryStatusInProgress,
		DeliveryStatusDelivered, DeliveryStatusCancelled:
		return true
	}
	return false
}

// Delivery assigns a courier to an order; at most one per order
type Delivery struct {
	BaseModel
	OrderID          string   `json:"order_id" gorm:"unique;not null"`
	DeliveryPersonID string   `json:"delivery_person_id" gorm:"not null"`
	Status           string   `json:"status" gorm:"not null;default:pending"`
	Latitude         *float64 `json:"latitude"` // courier's last reported position
	Longitude        *float64 `json:"longitude"`

	Order          Order `json:"order,omitzero" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryPerson *User `json:"delivery_person,omitempty" gorm:"foreignKey:DeliveryPersonID;references:ID"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	all := []interface{}{
		&User{}, &Hotel{}, &Room{}, &Restaurant{}, &Menu{},
		&Reservation{}, &Order{}, &OrderItem{}, &Payment{}, &Delivery{},
	}

	return db.AutoMigrate(all...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
