package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/models"
	"github.com/facilite-dev/facilite/internal/qr"
	"github.com/facilite-dev/facilite/internal/tasks"
)

// Supported payment methods
const (
	MethodAirtelMoney = "airtel_money"
	MethodOrangeMoney = "orange_money"
	MethodMpesa       = "mpesa"
	MethodVisa        = "visa"
	MethodMastercard  = "mastercard"
	MethodCash        = "cash"
)

// Platform commission: a flat fee on every payment plus the gateway's cut,
// which depends on the channel.
const (
	flatCommission  = 2.0
	cardRate        = 0.02
	mobileMoneyRate = 0.01
)

// CreatePaymentRequest represents a payment against an order or a reservation
type CreatePaymentRequest struct {
	OrderID       string  `json:"order_id"`
	ReservationID string  `json:"reservation_id"`
	Method        string  `json:"payment_method" binding:"required"`
	Discount      float64 `json:"discount"`
}

// ValidateQRRequest represents an on-site QR receipt validation
type ValidateQRRequest struct {
	TransactionCode string `json:"transaction_code" binding:"required"`
}

// CommissionStats aggregates platform commissions over settled payments
type CommissionStats struct {
	Count           int64   `json:"count"`
	TotalAmount     float64 `json:"total_amount"`
	TotalCommission float64 `json:"total_commission"`
	TotalNet        float64 `json:"total_net"`
}

// MonthlyCommission is a month bucket of CommissionStats
type MonthlyCommission struct {
	Month           string  `json:"month"`
	Count           int64   `json:"count"`
	TotalAmount     float64 `json:"total_amount"`
	TotalCommission float64 `json:"total_commission"`
	TotalNet        float64 `json:"total_net"`
}

func supportedMethod(method string) bool {
	switch method {
	case MethodAirtelMoney, MethodOrangeMoney, MethodMpesa, MethodVisa, MethodMastercard, MethodCash:
		return true
	}
	return false
}

func commissionFor(method string, amount float64) float64 {
	switch method {
	case MethodVisa, MethodMastercard:
		return flatCommission + amount*cardRate
	case MethodAirtelMoney, MethodOrangeMoney, MethodMpesa:
		return flatCommission + amount*mobileMoneyRate
	default:
		return flatCommission
	}
}

// @Summary Create payment
// @Description Pay for an order or a reservation; settlement is asynchronous
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePaymentRequest true "Payment request"
// @Success 201 {object} models.Payment
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /payments [post]
func (s *Server) createPayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !supportedMethod(req.Method) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported payment method"})
		return
	}
	if (req.OrderID == "") == (req.ReservationID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one of order_id or reservation_id is required"})
		return
	}
	if req.Discount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount cannot be negative"})
		return
	}

	session, _ := GetSessionData(c)

	payment := &models.Payment{
		UserID:          session.UserID,
		Method:          req.Method,
		Status:          models.PaymentStatusPending,
		Discount:        req.Discount,
		TransactionCode: qr.NewTransactionCode(),
	}

	var amount float64
	switch {
	case req.OrderID != "":
		var order models.Order
		if err := models.FindByID(s.db, req.OrderID, &order); err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			s.logger.Error().Err(err).Msg("Failed to load order")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if session.Role != access.RoleAdmin && order.UserID != session.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
			return
		}
		amount = order.Total
		payment.OrderID = &order.ID
	default:
		var reservation models.Reservation
		if err := models.FindByID(s.db, req.ReservationID, &reservation); err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
				return
			}
			s.logger.Error().Err(err).Msg("Failed to load reservation")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if session.Role != access.RoleAdmin && reservation.UserID != session.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your reservation"})
			return
		}
		amount = reservation.TotalPrice
		payment.ReservationID = &reservation.ID
	}

	amount -= req.Discount
	if amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount exceeds the amount due"})
		return
	}

	payment.Amount = amount
	payment.Commission = commissionFor(req.Method, amount)
	payment.NetAmount = amount - payment.Commission

	if err := s.db.Create(payment).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}

	task, err := tasks.NewProcessPaymentTask(payment.ID)
	if err == nil {
		_, err = s.asynqClient.Enqueue(task)
	}
	if err != nil {
		// The scheduled sweep retries or expires payments the enqueue missed
		s.logger.Error().Err(err).Str("payment_id", payment.ID).Msg("Failed to enqueue payment task")
	}

	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("transaction_code", payment.TransactionCode).
		Str("method", payment.Method).
		Float64("amount", payment.Amount).
		Msg("Payment created")

	c.JSON(http.StatusCreated, payment)
}

// @Summary List payments
// @Description List all payments (admin only)
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Payment
// @Router /payments [get]
func (s *Server) listPayments(c *gin.Context) {
	query := s.db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// @Summary Get payment
// @Description Get a payment (owner or admin)
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} models.Payment
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /payments/{id} [get]
func (s *Server) getPayment(c *gin.Context) {
	var payment models.Payment
	if err := models.FindByID(s.db, c.Param("id"), &payment); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session, _ := GetSessionData(c)
	if session.Role != access.RoleAdmin && payment.UserID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your payment"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// @Summary Validate payment QR
// @Description Redeem a payment's QR receipt on site; each receipt is single-use (staff only)
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ValidateQRRequest true "Transaction code"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /payments/validate [post]
func (s *Server) validatePaymentQR(c *gin.Context) {
	var req ValidateQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var payment models.Payment
	err := s.db.Where("transaction_code = ?", req.TransactionCode).First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown transaction code"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if payment.Status != models.PaymentStatusSuccess {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment is not settled"})
		return
	}

	// Atomic claim: only one staff member can redeem a receipt
	result := s.db.Model(&models.Payment{}).
		Where("id = ? AND is_used = ?", payment.ID, false).
		Update("is_used", true)
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Str("payment_id", payment.ID).Msg("Failed to redeem receipt")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Receipt already used"})
		return
	}

	session, _ := GetSessionData(c)
	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("transaction_code", payment.TransactionCode).
		Str("validated_by", session.UserID).
		Msg("Payment receipt validated")

	c.JSON(http.StatusOK, gin.H{
		"message":          "Receipt validated",
		"payment_id":       payment.ID,
		"transaction_code": payment.TransactionCode,
		"amount":           payment.Amount,
	})
}

// @Summary My payments
// @Description List the authenticated user's payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Payment
// @Router /me/payments [get]
func (s *Server) myPayments(c *gin.Context) {
	session, _ := GetSessionData(c)

	var payments []models.Payment
	err := s.db.Where("user_id = ?", session.UserID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// @Summary Commission totals
// @Description Aggregate commissions over settled payments (admin only)
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CommissionStats
// @Router /stats/commissions [get]
func (s *Server) totalCommissions(c *gin.Context) {
	var stats CommissionStats
	err := s.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusSuccess).
		Select("COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount, COALESCE(SUM(commission), 0) as total_commission, COALESCE(SUM(net_amount), 0) as total_net").
		Scan(&stats).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to aggregate commissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Monthly commissions
// @Description Aggregate commissions per settlement month (admin only)
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} MonthlyCommission
// @Router /stats/commissions/monthly [get]
func (s *Server) monthlyCommissions(c *gin.Context) {
	var buckets []MonthlyCommission
	err := s.db.Model(&models.Payment{}).
		Where("status = ? AND settled_at IS NOT NULL", models.PaymentStatusSuccess).
		Select("strftime('%Y-%m', settled_at) as month, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount, COALESCE(SUM(commission), 0) as total_commission, COALESCE(SUM(net_amount), 0) as total_net").
		Group("month").
		Order("month DESC").
		Scan(&buckets).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to aggregate monthly commissions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if buckets == nil {
		buckets = []MonthlyCommission{}
	}
	c.JSON(http.StatusOK, buckets)
}
