// Package client is the CLI's HTTP gateway to the Facilite API. Every
// request flows through a transport that attaches the session credential and
// watches for the server revoking it.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/cli/session"
)

// ErrSessionExpired is returned when the server rejects the held credential.
// By the time a caller sees it the session has already been logged out, so
// the right reaction is to send the user back to login, not to retry.
var ErrSessionExpired = errors.New("session expired, please log in again")

// Client represents an HTTP client for the Facilite API
type Client struct {
	baseURL    string
	session    *session.Session
	httpClient *http.Client
}

// authTransport attaches the session credential to outgoing requests and
// logs the session out when the server answers 401. Detection lives here, in
// the one place every authenticated request passes through, so no individual
// call site can forget it.
type authTransport struct {
	session *session.Session
	next    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attached := false
	if t.session.IsAuthenticated() {
		// Clone before mutating: RoundTrippers must not modify the original
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.session.Credential())
		attached = true
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// A 401 on a request that carried a credential means the credential is
	// dead. A 401 without one is an ordinary rejection (e.g. a failed login)
	// and must not touch the session.
	if resp.StatusCode == http.StatusUnauthorized && attached {
		resp.Body.Close()
		if err := t.session.Logout(); err != nil {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	return resp, nil
}

// New creates an API client bound to a session.
func New(baseURL string, sess *session.Session) *Client {
	return &Client{
		baseURL: baseURL,
		session: sess,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &authTransport{
				session: sess,
				next:    http.DefaultTransport,
			},
		},
	}
}

// SetHTTPClient swaps the underlying HTTP client, keeping the auth transport.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	httpClient.Transport = &authTransport{session: c.session, next: next}
	c.httpClient = httpClient
}

// apiError is the server's error envelope
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionExpired
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope apiError
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("%s (status %d)", envelope.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        access.Role `json:"role"`
}

// UserDetail represents an account as returned by the API
type UserDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PhoneNumber string      `json:"phone_number"`
	Role        access.Role `json:"role"`
}

// LoginClient authenticates a client by phone number and stores the session.
func (c *Client) LoginClient(phoneNumber string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(http.MethodPost, "/auth/login/client",
		map[string]string{"phone_number": phoneNumber}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.Login(resp.AccessToken, resp.Role); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &resp, nil
}

// LoginManager authenticates a staff account and stores the session.
func (c *Client) LoginManager(phoneNumber, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(http.MethodPost, "/auth/login/manager",
		map[string]string{"phone_number": phoneNumber, "password": password}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.Login(resp.AccessToken, resp.Role); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &resp, nil
}

// RegisterClient creates a client account; registration logs the new account
// in immediately.
func (c *Client) RegisterClient(name, phoneNumber, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(http.MethodPost, "/auth/register/client", map[string]string{
		"name":         name,
		"phone_number": phoneNumber,
		"password":     password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.Login(resp.AccessToken, resp.Role); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &resp, nil
}

// Me returns the authenticated account as the server sees it.
func (c *Client) Me() (*UserDetail, error) {
	var user UserDetail
	if err := c.do(http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Hotel mirrors the API's hotel resource
type Hotel struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	PricePerNight float64 `json:"price_per_night"`
	Rating        float64 `json:"rating"`
	Rooms         []Room  `json:"rooms,omitempty"`
}

// Room mirrors the API's room resource
type Room struct {
	ID            string  `json:"id"`
	RoomNumber    string  `json:"room_number"`
	Capacity      int     `json:"capacity"`
	PricePerNight float64 `json:"price_per_night"`
}

// ListHotels returns the hotel catalog.
func (c *Client) ListHotels() ([]Hotel, error) {
	var hotels []Hotel
	if err := c.do(http.MethodGet, "/hotels", nil, &hotels); err != nil {
		return nil, err
	}
	return hotels, nil
}

// GetHotel returns one hotel with its rooms.
func (c *Client) GetHotel(id string) (*Hotel, error) {
	var hotel Hotel
	if err := c.do(http.MethodGet, "/hotels/"+url.PathEscape(id), nil, &hotel); err != nil {
		return nil, err
	}
	return &hotel, nil
}

// Restaurant mirrors the API's restaurant resource
type Restaurant struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Rating  float64    `json:"rating"`
	Menus   []MenuItem `json:"menus,omitempty"`
}

// MenuItem mirrors the API's menu resource
type MenuItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// ListRestaurants returns the restaurant catalog.
func (c *Client) ListRestaurants() ([]Restaurant, error) {
	var restaurants []Restaurant
	if err := c.do(http.MethodGet, "/restaurants", nil, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// GetRestaurant returns one restaurant with its menu.
func (c *Client) GetRestaurant(id string) (*Restaurant, error) {
	var restaurant Restaurant
	if err := c.do(http.MethodGet, "/restaurants/"+url.PathEscape(id), nil, &restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// Reservation mirrors the API's reservation resource
type Reservation struct {
	ID         string  `json:"id"`
	HotelID    string  `json:"hotel_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	TotalPrice float64 `json:"total_price"`
	Hotel      *Hotel  `json:"hotel,omitempty"`
}

// CreateReservation books a hotel stay.
func (c *Client) CreateReservation(hotelID, checkIn, checkOut string) (*Reservation, error) {
	var reservation Reservation
	err := c.do(http.MethodPost, "/reservations", map[string]string{
		"hotel_id":  hotelID,
		"check_in":  checkIn,
		"check_out": checkOut,
	}, &reservation)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// MyReservations lists the authenticated user's reservations.
func (c *Client) MyReservations() ([]Reservation, error) {
	var reservations []Reservation
	if err := c.do(http.MethodGet, "/me/reservations", nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// OrderItem is a line of an order request
type OrderItem struct {
	MenuID   string `json:"menu_id"`
	Quantity int    `json:"quantity"`
}

// Order mirrors the API's order resource
type Order struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurant_id"`
	Total        float64     `json:"total"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
}

// CreateOrder places a food order.
func (c *Client) CreateOrder(restaurantID string, items []OrderItem) (*Order, error) {
	var order Order
	err := c.do(http.MethodPost, "/orders", map[string]interface{}{
		"restaurant_id": restaurantID,
		"items":         items,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders lists the authenticated user's orders.
func (c *Client) MyOrders() ([]Order, error) {
	var orders []Order
	if err := c.do(http.MethodGet, "/me/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Payment mirrors the API's payment resource
type Payment struct {
	ID              string  `json:"id"`
	Amount          float64 `json:"amount"`
	Commission      float64 `json:"commission"`
	NetAmount       float64 `json:"net_amount"`
	Method          string  `json:"payment_method"`
	Status          string  `json:"status"`
	TransactionCode string  `json:"transaction_code"`
	QRPath          string  `json:"qr_path,omitempty"`
}

// PaymentTarget names what a payment settles: an order or a reservation.
type PaymentTarget struct {
	OrderID       string
	ReservationID string
}

// CreatePayment pays for an order or a reservation.
func (c *Client) CreatePayment(target PaymentTarget, method string) (*Payment, error) {
	body := map[string]string{"payment_method": method}
	if target.OrderID != "" {
		body["order_id"] = target.OrderID
	}
	if target.ReservationID != "" {
		body["reservation_id"] = target.ReservationID
	}

	var payment Payment
	if err := c.do(http.MethodPost, "/payments", body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment returns one payment.
func (c *Client) GetPayment(id string) (*Payment, error) {
	var payment Payment
	if err := c.do(http.MethodGet, "/payments/"+url.PathEscape(id), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// MyPayments lists the authenticated user's payments.
func (c *Client) MyPayments() ([]Payment, error) {
	var payments []Payment
	if err := c.do(http.MethodGet, "/me/payments", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// Delivery mirrors the API's delivery resource
type Delivery struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Order   *Order `json:"order,omitempty"`
}

// MyDeliveries lists the deliveries assigned to the authenticated courier.
func (c *Client) MyDeliveries() ([]Delivery, error) {
	var deliveries []Delivery
	if err := c.do(http.MethodGet, "/me/deliveries", nil, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// NearbyPlace is a hotel or restaurant near a position
type NearbyPlace struct {
	Type       string  `json:"type"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	DistanceKm float64 `json:"distance_km"`
}

// Nearby lists hotels and restaurants around a position.
func (c *Client) Nearby(latitude, longitude, radiusKm float64) ([]NearbyPlace, error) {
	path := fmt.Sprintf("/nearby?latitude=%f&longitude=%f&radius_km=%f", latitude, longitude, radiusKm)
	var places []NearbyPlace
	if err := c.do(http.MethodGet, path, nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}
