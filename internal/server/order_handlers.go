package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/models"
)

// OrderItemRequest is a line of a food order
type OrderItemRequest struct {
	MenuID   string `json:"menu_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest represents a food order; the total is computed
// server-side from current menu prices
type CreateOrderRequest struct {
	RestaurantID string             `json:"restaurant_id" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Latitude     *float64           `json:"latitude"`
	Longitude    *float64           `json:"longitude"`
}

var errMenuMismatch = errors.New("menu item does not belong to restaurant")

// @Summary Create order
// @Description Place a food order with a restaurant
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Order request"
// @Success 201 {object} models.Order
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var restaurant models.Restaurant
	if err := models.FindByID(s.db, req.RestaurantID, &restaurant); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load restaurant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session, _ := GetSessionData(c)
	order := &models.Order{
		UserID:       session.UserID,
		RestaurantID: restaurant.ID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	// Price the order and persist it atomically; menu prices are read inside
	// the transaction so a concurrent price change cannot split the total.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			var menu models.Menu
			if err := tx.Where("id = ?", line.MenuID).First(&menu).Error; err != nil {
				return err
			}
			if menu.RestaurantID != restaurant.ID {
				return errMenuMismatch
			}
			total += menu.Price * float64(line.Quantity)
			items = append(items, models.OrderItem{MenuID: menu.ID, Quantity: line.Quantity})
		}

		order.Total = total
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		switch {
		case err == gorm.ErrRecordNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		case err == errMenuMismatch:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item does not belong to this restaurant"})
		default:
			s.logger.Error().Err(err).Msg("Failed to create order")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("restaurant_id", restaurant.ID).
		Str("user_id", session.UserID).
		Float64("total", order.Total).
		Msg("Order created")

	if err := s.db.Preload("Items").Preload("Items.Menu").First(order, "id = ?", order.ID).Error; err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to reload order")
	}
	c.JSON(http.StatusCreated, order)
}

// @Summary List orders
// @Description List all orders (admin only)
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	var orders []models.Order
	err := s.db.Preload("Restaurant").Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// loadVisibleOrder loads an order the session may see: the client who placed
// it, the courier delivering it, the restaurant's manager, or an admin.
func (s *Server) loadVisibleOrder(c *gin.Context, id string) (*models.Order, bool) {
	var order models.Order
	err := models.FindByIDWithPreload(s.db, id, &order, "Items", "Items.Menu", "Restaurant", "Delivery")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			s.logger.Error().Err(err).Str("order_id", id).Msg("Failed to load order")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	session, _ := GetSessionData(c)
	switch {
	case session.Role == access.RoleAdmin:
	case order.UserID == session.UserID:
	case order.Restaurant.OwnerID == session.UserID:
	case order.Delivery != nil && order.Delivery.DeliveryPersonID == session.UserID:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
		return nil, false
	}
	return &order, true
}

// @Summary Track order
// @Description Get an order with its delivery state (client, courier, manager or admin)
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id}/track [get]
func (s *Server) trackOrder(c *gin.Context) {
	order, ok := s.loadVisibleOrder(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// @Summary Get order delivery
// @Description Get the delivery assigned to an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.Delivery
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id}/delivery [get]
func (s *Server) getOrderDelivery(c *gin.Context) {
	order, ok := s.loadVisibleOrder(c, c.Param("id"))
	if !ok {
		return
	}
	if order.Delivery == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No delivery assigned to this order"})
		return
	}

	var delivery models.Delivery
	err := models.FindByIDWithPreload(s.db, order.Delivery.ID, &delivery, "DeliveryPerson")
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to load delivery")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, delivery)
}

// @Summary Update order location
// @Description Report the client's position for an order (owner or admin)
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body UpdateLocationRequest true "Position"
// @Success 200 {object} models.Order
// @Failure 403 {object} map[string]interface{}
// @Router /orders/{id}/location [post]
func (s *Server) updateOrderLocation(c *gin.Context) {
	order, ok := s.loadVisibleOrder(c, c.Param("id"))
	if !ok {
		return
	}

	session, _ := GetSessionData(c)
	if session.Role != access.RoleAdmin && order.UserID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the client may update the drop-off position"})
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"latitude": req.Latitude, "longitude": req.Longitude}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to update location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// @Summary My orders
// @Description List the authenticated user's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Order
// @Router /me/orders [get]
func (s *Server) myOrders(c *gin.Context) {
	session, _ := GetSessionData(c)

	var orders []models.Order
	err := s.db.Preload("Restaurant").Preload("Items").Preload("Items.Menu").
		Where("user_id = ?", session.UserID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, orders)
}
