package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/auth"
	"github.com/facilite-dev/facilite/internal/config"
	"github.com/facilite-dev/facilite/internal/models"
)

// newTestServer builds a server on a throwaway database file. Redis is
// pointed at a closed port: the login limiter fails open and payment enqueues
// fall back to the scheduled sweep, so neither needs a live broker in tests.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.URL = filepath.Join(t.TempDir(), "facilite-test.sqlite")
	cfg.Redis.Address = "localhost:0"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLMinutes = 60
	cfg.Auth.LoginRateMax = 5
	cfg.Auth.LoginRateWindowSeconds = 60
	cfg.Payments.QRDir = t.TempDir()

	s, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	return s
}

func (s *Server) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var testPhoneSeq int

func nextPhone() string {
	testPhoneSeq++
	return fmt.Sprintf("+2438200%05d", testPhoneSeq)
}

// seedUser creates an account directly and returns it with a fresh token.
func seedUser(t *testing.T, s *Server, role access.Role) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Name:         "Test " + role.String(),
		PhoneNumber:  nextPhone(),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.db.Create(user).Error)

	token, err := auth.GenerateToken(user.ID, user.PhoneNumber, user.Role)
	require.NoError(t, err)
	return user, token
}

func seedHotel(t *testing.T, s *Server, ownerID string, pricePerNight float64) *models.Hotel {
	t.Helper()
	hotel := &models.Hotel{
		OwnerID:       ownerID,
		Name:          "Hotel " + nextPhone(),
		Address:       "12 Avenue de la Gombe",
		City:          "Kinshasa",
		PricePerNight: pricePerNight,
	}
	require.NoError(t, s.db.Create(hotel).Error)
	return hotel
}

func seedRestaurant(t *testing.T, s *Server, ownerID string) *models.Restaurant {
	t.Helper()
	restaurant := &models.Restaurant{
		OwnerID: ownerID,
		Name:    "Resto " + nextPhone(),
		Address: "3 Boulevard du 30 Juin",
	}
	require.NoError(t, s.db.Create(restaurant).Error)
	return restaurant
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]interface{}](t, w)
	require.Equal(t, "online", body["status"])
}

func TestClientRegistrationAndLogin(t *testing.T) {
	s := newTestServer(t)
	phone := nextPhone()

	t.Run("RegisterReturnsToken", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/register/client", "", map[string]interface{}{
			"name":         "Amina K",
			"phone_number": phone,
			"password":     "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[LoginResponse](t, w)
		require.NotEmpty(t, resp.AccessToken)
		require.Equal(t, access.RoleClient, resp.Role)
		require.NotNil(t, resp.User)

		// The token works immediately
		me := s.request(t, http.MethodGet, "/auth/me", resp.AccessToken, nil)
		require.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("DuplicatePhoneRejected", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/register/client", "", map[string]interface{}{
			"name":         "Someone Else",
			"phone_number": phone,
			"password":     "secret123",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidPhoneRejected", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/register/client", "", map[string]interface{}{
			"name":         "Bad Phone",
			"phone_number": "not-a-phone",
			"password":     "secret123",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("LoginByPhoneOnly", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/login/client", "", map[string]interface{}{
			"phone_number": phone,
		})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[LoginResponse](t, w)
		require.NotEmpty(t, resp.AccessToken)
	})

	t.Run("UnknownPhoneUnauthorized", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/login/client", "", map[string]interface{}{
			"phone_number": nextPhone(),
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestManagerLogin(t *testing.T) {
	s := newTestServer(t)
	manager, _ := seedUser(t, s, access.RoleHotelManager)
	client, _ := seedUser(t, s, access.RoleClient)

	t.Run("ValidCredentials", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/login/manager", "", map[string]interface{}{
			"phone_number": manager.PhoneNumber,
			"password":     "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[LoginResponse](t, w)
		require.Equal(t, access.RoleHotelManager, resp.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/login/manager", "", map[string]interface{}{
			"phone_number": manager.PhoneNumber,
			"password":     "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ClientRoleForbidden", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/auth/login/manager", "", map[string]interface{}{
			"phone_number": client.PhoneNumber,
			"password":     "password123",
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	t.Run("MissingTokenUnauthorized", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/auth/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GarbageTokenUnauthorized", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/auth/me", "not-a-jwt", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("DeactivatedUserUnauthorized", func(t *testing.T) {
		user, token := seedUser(t, s, access.RoleClient)

		w := s.request(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// Deactivation invalidates tokens that are otherwise still valid
		require.NoError(t, s.db.Model(user).Update("is_active", false).Error)
		w = s.request(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RoleFromStoreNotFromStaleToken", func(t *testing.T) {
		user, token := seedUser(t, s, access.RoleClient)

		// Promote the account after the token was minted: privileged calls
		// follow the stored role, not the role claim baked into the token
		require.NoError(t, s.db.Model(user).Update("role", access.RoleAdmin).Error)
		w := s.request(t, http.MethodGet, "/users", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoleEnforcement(t *testing.T) {
	s := newTestServer(t)
	_, clientToken := seedUser(t, s, access.RoleClient)
	_, adminToken := seedUser(t, s, access.RoleAdmin)

	t.Run("ClientCannotListUsers", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/users", clientToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AdminCanListUsers", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ClientCannotCreateHotel", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/hotels", clientToken, map[string]interface{}{
			"name":            "Sneaky Hotel",
			"address":         "Nowhere",
			"price_per_night": 10.0,
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AnonymousGets401Not403", func(t *testing.T) {
		// Authentication is checked before the role, so a logged-out caller
		// is told to log in rather than being denied by role
		w := s.request(t, http.MethodGet, "/users", "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHotelManagement(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := seedUser(t, s, access.RoleAdmin)
	manager, managerToken := seedUser(t, s, access.RoleHotelManager)
	_, otherToken := seedUser(t, s, access.RoleHotelManager)

	hotel := seedHotel(t, s, manager.ID, 80)

	t.Run("PublicListing", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/hotels", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		hotels := decode[[]models.Hotel](t, w)
		require.Len(t, hotels, 1)
	})

	t.Run("OwnerCanUpdate", func(t *testing.T) {
		w := s.request(t, http.MethodPut, "/hotels/"+hotel.ID, managerToken, map[string]interface{}{
			"price_per_night": 95.0,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var reloaded models.Hotel
		require.NoError(t, s.db.First(&reloaded, "id = ?", hotel.ID).Error)
		require.Equal(t, 95.0, reloaded.PricePerNight)
	})

	t.Run("NonOwnerManagerForbidden", func(t *testing.T) {
		w := s.request(t, http.MethodPut, "/hotels/"+hotel.ID, otherToken, map[string]interface{}{
			"price_per_night": 1.0,
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("OwnerCanAddRoom", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/hotels/"+hotel.ID+"/rooms", managerToken, map[string]interface{}{
			"room_number":     "101",
			"capacity":        2,
			"price_per_night": 95.0,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		rooms := s.request(t, http.MethodGet, "/hotels/"+hotel.ID+"/rooms", "", nil)
		require.Equal(t, http.StatusOK, rooms.Code)
		require.Len(t, decode[[]models.Room](t, rooms), 1)
	})

	t.Run("AdminCanDelete", func(t *testing.T) {
		doomed := seedHotel(t, s, manager.ID, 50)
		w := s.request(t, http.MethodDelete, "/hotels/"+doomed.ID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.request(t, http.MethodGet, "/hotels/"+doomed.ID, "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReservationPricing(t *testing.T) {
	s := newTestServer(t)
	client, clientToken := seedUser(t, s, access.RoleClient)
	manager, _ := seedUser(t, s, access.RoleHotelManager)
	hotel := seedHotel(t, s, manager.ID, 75)

	t.Run("TotalIsNightsTimesRate", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/reservations", clientToken, map[string]interface{}{
			"hotel_id":  hotel.ID,
			"check_in":  "2026-10-01",
			"check_out": "2026-10-04",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		reservation := decode[models.Reservation](t, w)
		require.Equal(t, 225.0, reservation.TotalPrice) // 3 nights at 75
		require.Equal(t, client.ID, reservation.UserID)
	})

	t.Run("CheckOutBeforeCheckInRejected", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/reservations", clientToken, map[string]interface{}{
			"hotel_id":  hotel.ID,
			"check_in":  "2026-10-04",
			"check_out": "2026-10-01",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("OwnListing", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/me/reservations", clientToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decode[[]models.Reservation](t, w), 1)
	})

	t.Run("OtherClientCannotTrack", func(t *testing.T) {
		var reservation models.Reservation
		require.NoError(t, s.db.First(&reservation).Error)

		_, strangerToken := seedUser(t, s, access.RoleClient)
		w := s.request(t, http.MethodGet, "/reservations/"+reservation.ID+"/track", strangerToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestOrderPricing(t *testing.T) {
	s := newTestServer(t)
	_, clientToken := seedUser(t, s, access.RoleClient)
	manager, _ := seedUser(t, s, access.RoleRestaurantManager)
	restaurant := seedRestaurant(t, s, manager.ID)

	poulet := &models.Menu{RestaurantID: restaurant.ID, Name: "Poulet moambe", Category: "main", Price: 12.5}
	fufu := &models.Menu{RestaurantID: restaurant.ID, Name: "Fufu", Category: "main", Price: 4}
	require.NoError(t, s.db.Create(poulet).Error)
	require.NoError(t, s.db.Create(fufu).Error)

	t.Run("TotalFromMenuPrices", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/orders", clientToken, map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"items": []map[string]interface{}{
				{"menu_id": poulet.ID, "quantity": 2},
				{"menu_id": fufu.ID, "quantity": 1},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		order := decode[models.Order](t, w)
		require.Equal(t, 29.0, order.Total) // 2*12.5 + 4
		require.Len(t, order.Items, 2)
	})

	t.Run("ForeignMenuItemRejected", func(t *testing.T) {
		other := seedRestaurant(t, s, manager.ID)
		foreign := &models.Menu{RestaurantID: other.ID, Name: "Brochettes", Price: 6}
		require.NoError(t, s.db.Create(foreign).Error)

		w := s.request(t, http.MethodPost, "/orders", clientToken, map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"items": []map[string]interface{}{
				{"menu_id": foreign.ID, "quantity": 1},
			},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("EmptyOrderRejected", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/orders", clientToken, map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"items":         []map[string]interface{}{},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	client, clientToken := seedUser(t, s, access.RoleClient)
	manager, _ := seedUser(t, s, access.RoleHotelManager)
	_, adminToken := seedUser(t, s, access.RoleAdmin)
	hotel := seedHotel(t, s, manager.ID, 100)

	reservation := &models.Reservation{
		UserID:     client.ID,
		HotelID:    hotel.ID,
		CheckIn:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC),
		TotalPrice: 200,
	}
	require.NoError(t, s.db.Create(reservation).Error)

	t.Run("CardCommission", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments", clientToken, map[string]interface{}{
			"reservation_id": reservation.ID,
			"payment_method": "visa",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		payment := decode[models.Payment](t, w)
		require.Equal(t, 200.0, payment.Amount)
		require.Equal(t, 6.0, payment.Commission) // 2 flat + 2% of 200
		require.Equal(t, 194.0, payment.NetAmount)
		require.Equal(t, models.PaymentStatusPending, payment.Status)
		require.NotEmpty(t, payment.TransactionCode)
	})

	t.Run("MobileMoneyCommission", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments", clientToken, map[string]interface{}{
			"reservation_id": reservation.ID,
			"payment_method": "mpesa",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		payment := decode[models.Payment](t, w)
		require.Equal(t, 4.0, payment.Commission) // 2 flat + 1% of 200
	})

	t.Run("UnsupportedMethodRejected", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments", clientToken, map[string]interface{}{
			"reservation_id": reservation.ID,
			"payment_method": "barter",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("TargetRequired", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments", clientToken, map[string]interface{}{
			"payment_method": "cash",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("StrangerCannotPayForIt", func(t *testing.T) {
		_, strangerToken := seedUser(t, s, access.RoleClient)
		w := s.request(t, http.MethodPost, "/payments", strangerToken, map[string]interface{}{
			"reservation_id": reservation.ID,
			"payment_method": "cash",
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("OwnerAndAdminCanRead", func(t *testing.T) {
		var payment models.Payment
		require.NoError(t, s.db.First(&payment).Error)

		w := s.request(t, http.MethodGet, "/payments/"+payment.ID, clientToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.request(t, http.MethodGet, "/payments/"+payment.ID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		_, strangerToken := seedUser(t, s, access.RoleClient)
		w = s.request(t, http.MethodGet, "/payments/"+payment.ID, strangerToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestQRValidationSingleUse(t *testing.T) {
	s := newTestServer(t)
	client, clientToken := seedUser(t, s, access.RoleClient)
	_, managerToken := seedUser(t, s, access.RoleHotelManager)

	now := time.Now()
	settled := &models.Payment{
		UserID:          client.ID,
		Amount:          50,
		NetAmount:       47,
		Commission:      3,
		Method:          "visa",
		Status:          models.PaymentStatusSuccess,
		TransactionCode: "TXN-1-SETTLED1",
		SettledAt:       &now,
	}
	pending := &models.Payment{
		UserID:          client.ID,
		Amount:          30,
		NetAmount:       28,
		Commission:      2,
		Method:          "cash",
		Status:          models.PaymentStatusPending,
		TransactionCode: "TXN-1-PENDING1",
	}
	require.NoError(t, s.db.Create(settled).Error)
	require.NoError(t, s.db.Create(pending).Error)

	t.Run("ClientCannotValidate", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments/validate", clientToken, map[string]interface{}{
			"transaction_code": settled.TransactionCode,
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("FirstValidationSucceeds", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments/validate", managerToken, map[string]interface{}{
			"transaction_code": settled.TransactionCode,
		})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("SecondValidationConflicts", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments/validate", managerToken, map[string]interface{}{
			"transaction_code": settled.TransactionCode,
		})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("PendingPaymentConflicts", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments/validate", managerToken, map[string]interface{}{
			"transaction_code": pending.TransactionCode,
		})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("UnknownCodeNotFound", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/payments/validate", managerToken, map[string]interface{}{
			"transaction_code": "TXN-1-MISSING1",
		})
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCommissionStats(t *testing.T) {
	s := newTestServer(t)
	client, _ := seedUser(t, s, access.RoleClient)
	_, adminToken := seedUser(t, s, access.RoleAdmin)

	mkPayment := func(code string, amount, commission float64, status string, settled time.Time) {
		p := &models.Payment{
			UserID:          client.ID,
			Amount:          amount,
			Commission:      commission,
			NetAmount:       amount - commission,
			Method:          "visa",
			Status:          status,
			TransactionCode: code,
		}
		if status == models.PaymentStatusSuccess {
			p.SettledAt = &settled
		}
		require.NoError(t, s.db.Create(p).Error)
	}

	mkPayment("TXN-1-STATS001", 100, 4, models.PaymentStatusSuccess, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))
	mkPayment("TXN-1-STATS002", 50, 3, models.PaymentStatusSuccess, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))
	mkPayment("TXN-1-STATS003", 999, 99, models.PaymentStatusFailed, time.Time{})

	t.Run("TotalsExcludeUnsettled", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/stats/commissions", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		stats := decode[CommissionStats](t, w)
		require.Equal(t, int64(2), stats.Count)
		require.Equal(t, 150.0, stats.TotalAmount)
		require.Equal(t, 7.0, stats.TotalCommission)
	})

	t.Run("MonthlyBuckets", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/stats/commissions/monthly", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		buckets := decode[[]MonthlyCommission](t, w)
		require.Len(t, buckets, 2)
		require.Equal(t, "2026-08", buckets[0].Month) // newest first
		require.Equal(t, "2026-07", buckets[1].Month)
	})
}

func TestDeliveryAssignment(t *testing.T) {
	s := newTestServer(t)
	client, _ := seedUser(t, s, access.RoleClient)
	manager, managerToken := seedUser(t, s, access.RoleRestaurantManager)
	courier, courierToken := seedUser(t, s, access.RoleDeliveryPerson)
	restaurant := seedRestaurant(t, s, manager.ID)

	order := &models.Order{UserID: client.ID, RestaurantID: restaurant.ID, Total: 20}
	require.NoError(t, s.db.Create(order).Error)

	var deliveryID string

	t.Run("ManagerAssignsCourier", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/deliveries", managerToken, map[string]interface{}{
			"order_id":           order.ID,
			"delivery_person_id": courier.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		delivery := decode[models.Delivery](t, w)
		require.Equal(t, models.DeliveryStatusPending, delivery.Status)
		deliveryID = delivery.ID
	})

	t.Run("SecondAssignmentConflicts", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/deliveries", managerToken, map[string]interface{}{
			"order_id":           order.ID,
			"delivery_person_id": courier.ID,
		})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("NonCourierRejected", func(t *testing.T) {
		other := &models.Order{UserID: client.ID, RestaurantID: restaurant.ID, Total: 10}
		require.NoError(t, s.db.Create(other).Error)

		w := s.request(t, http.MethodPost, "/deliveries", managerToken, map[string]interface{}{
			"order_id":           other.ID,
			"delivery_person_id": client.ID,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CourierUpdatesStatus", func(t *testing.T) {
		w := s.request(t, http.MethodPatch, "/deliveries/"+deliveryID, courierToken, map[string]interface{}{
			"status":    models.DeliveryStatusInProgress,
			"latitude":  -4.32,
			"longitude": 15.31,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var reloaded models.Delivery
		require.NoError(t, s.db.First(&reloaded, "id = ?", deliveryID).Error)
		require.Equal(t, models.DeliveryStatusInProgress, reloaded.Status)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		w := s.request(t, http.MethodPatch, "/deliveries/"+deliveryID, courierToken, map[string]interface{}{
			"status": "teleported",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CourierSeesOwnDeliveries", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/me/deliveries", courierToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decode[[]models.Delivery](t, w), 1)
	})
}

func TestNearbyPlaces(t *testing.T) {
	s := newTestServer(t)
	manager, _ := seedUser(t, s, access.RoleHotelManager)

	at := func(lat, lon float64) (*float64, *float64) { return &lat, &lon }

	// Central Kinshasa reference point
	lat, lon := -4.325, 15.322

	near := seedHotel(t, s, manager.ID, 60)
	near.Latitude, near.Longitude = at(-4.327, 15.320)
	require.NoError(t, s.db.Save(near).Error)

	far := seedHotel(t, s, manager.ID, 60)
	far.Latitude, far.Longitude = at(-11.66, 27.48) // Lubumbashi
	require.NoError(t, s.db.Save(far).Error)

	resto := seedRestaurant(t, s, manager.ID)
	resto.Latitude, resto.Longitude = at(-4.330, 15.325)
	require.NoError(t, s.db.Save(resto).Error)

	t.Run("RadiusFilterAndOrdering", func(t *testing.T) {
		w := s.request(t, http.MethodGet,
			fmt.Sprintf("/nearby?latitude=%f&longitude=%f&radius_km=5", lat, lon), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		places := decode[[]NearbyPlace](t, w)
		require.Len(t, places, 2)
		require.LessOrEqual(t, places[0].DistanceKm, places[1].DistanceKm)
	})

	t.Run("TypeFilter", func(t *testing.T) {
		w := s.request(t, http.MethodGet,
			fmt.Sprintf("/nearby?latitude=%f&longitude=%f&radius_km=5&type=restaurant", lat, lon), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		places := decode[[]NearbyPlace](t, w)
		require.Len(t, places, 1)
		require.Equal(t, "restaurant", places[0].Type)
	})

	t.Run("MissingCoordinatesRejected", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/nearby?radius_km=5", "", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLocationDistance(t *testing.T) {
	s := newTestServer(t)

	t.Run("KinshasaToLubumbashi", func(t *testing.T) {
		w := s.request(t, http.MethodGet,
			"/location/distance?lat1=-4.325&lon1=15.322&lat2=-11.66&lon2=27.48", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[map[string]any](t, w)
		distance, ok := body["distance_km"].(float64)
		require.True(t, ok)
		// Roughly 1570 km apart
		require.InDelta(t, 1570, distance, 30)
	})

	t.Run("MissingCoordinateRejected", func(t *testing.T) {
		w := s.request(t, http.MethodGet,
			"/location/distance?lat1=-4.325&lon1=15.322&lat2=-11.66", "", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
