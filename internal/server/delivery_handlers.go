package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/models"
)

// AssignDeliveryRequest assigns a courier to an order
type AssignDeliveryRequest struct {
	OrderID          string `json:"order_id" binding:"required"`
	DeliveryPersonID string `json:"delivery_person_id" binding:"required"`
}

// UpdateDeliveryRequest updates a delivery's status and/or the courier's
// reported position
type UpdateDeliveryRequest struct {
	Status    *string  `json:"status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// @Summary Assign delivery
// @Description Assign a courier to an order; at most one delivery per order (admin or restaurant manager)
// @Tags deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssignDeliveryRequest true "Assignment request"
// @Success 201 {object} models.Delivery
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /deliveries [post]
func (s *Server) assignDelivery(c *gin.Context) {
	var req AssignDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	err := models.FindByIDWithPreload(s.db, req.OrderID, &order, "Restaurant")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session, _ := GetSessionData(c)
	if session.Role != access.RoleAdmin && order.Restaurant.OwnerID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this order's restaurant"})
		return
	}

	var courier models.User
	if err := models.FindByID(s.db, req.DeliveryPersonID, &courier); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Courier not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load courier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if courier.Role != access.RoleDeliveryPerson || !courier.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not an active courier"})
		return
	}

	delivery := &models.Delivery{
		OrderID:          order.ID,
		DeliveryPersonID: courier.ID,
		Status:           models.DeliveryStatusPending,
	}
	if err := s.db.Create(delivery).Error; err != nil {
		// The unique index on order_id enforces one delivery per order
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{"error": "Order already has a delivery"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to create delivery")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create delivery"})
		return
	}

	s.logger.Info().
		Str("delivery_id", delivery.ID).
		Str("order_id", order.ID).
		Str("courier_id", courier.ID).
		Msg("Delivery assigned")

	c.JSON(http.StatusCreated, delivery)
}

// loadVisibleDelivery loads a delivery the session may see: the assigned
// courier, the client who placed the order, the restaurant's manager, or an
// admin.
func (s *Server) loadVisibleDelivery(c *gin.Context, id string) (*models.Delivery, bool) {
	var delivery models.Delivery
	err := models.FindByIDWithPreload(s.db, id, &delivery, "Order", "Order.Restaurant", "DeliveryPerson")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		} else {
			s.logger.Error().Err(err).Str("delivery_id", id).Msg("Failed to load delivery")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	session, _ := GetSessionData(c)
	switch {
	case session.Role == access.RoleAdmin:
	case delivery.DeliveryPersonID == session.UserID:
	case delivery.Order.UserID == session.UserID:
	case delivery.Order.Restaurant.OwnerID == session.UserID:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your delivery"})
		return nil, false
	}
	return &delivery, true
}

// @Summary Get delivery
// @Description Get a delivery (courier, client, manager or admin)
// @Tags deliveries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Delivery ID"
// @Success 200 {object} models.Delivery
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /deliveries/{id} [get]
func (s *Server) getDelivery(c *gin.Context) {
	delivery, ok := s.loadVisibleDelivery(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, delivery)
}

// @Summary Update delivery
// @Description Update a delivery's status or the courier's position (assigned courier, manager or admin)
// @Tags deliveries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Delivery ID"
// @Param request body UpdateDeliveryRequest true "Fields to update"
// @Success 200 {object} models.Delivery
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /deliveries/{id} [patch]
func (s *Server) updateDelivery(c *gin.Context) {
	delivery, ok := s.loadVisibleDelivery(c, c.Param("id"))
	if !ok {
		return
	}

	session, _ := GetSessionData(c)
	canUpdate := session.Role == access.RoleAdmin ||
		delivery.DeliveryPersonID == session.UserID ||
		delivery.Order.Restaurant.OwnerID == session.UserID
	if !canUpdate {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the courier or the manager may update a delivery"})
		return
	}

	var req UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		if !models.ValidDeliveryStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown delivery status"})
			return
		}
		updates["status"] = *req.Status
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := s.db.Model(delivery).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Str("delivery_id", delivery.ID).Msg("Failed to update delivery")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery"})
		return
	}

	s.logger.Info().
		Str("delivery_id", delivery.ID).
		Str("status", delivery.Status).
		Str("updated_by", session.UserID).
		Msg("Delivery updated")

	c.JSON(http.StatusOK, delivery)
}

// @Summary Delete delivery
// @Description Remove a delivery assignment (admin only)
// @Tags deliveries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Delivery ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /deliveries/{id} [delete]
func (s *Server) deleteDelivery(c *gin.Context) {
	deliveryID := c.Param("id")

	result := s.db.Where("id = ?", deliveryID).Delete(&models.Delivery{})
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Str("delivery_id", deliveryID).Msg("Failed to delete delivery")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery deleted"})
}

// @Summary My deliveries
// @Description List the deliveries assigned to the authenticated courier
// @Tags deliveries
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Delivery
// @Router /me/deliveries [get]
func (s *Server) myDeliveries(c *gin.Context) {
	session, _ := GetSessionData(c)

	query := s.db.Preload("Order").Preload("Order.Restaurant").
		Where("delivery_person_id = ?", session.UserID).
		Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		if !models.ValidDeliveryStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown delivery status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var deliveries []models.Delivery
	if err := query.Find(&deliveries).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list deliveries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, deliveries)
}
