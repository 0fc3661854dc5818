package server

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/models"
)

// CreateReservationRequest represents a hotel booking request. Dates use the
// YYYY-MM-DD form; the total is computed server-side from the nightly rate.
type CreateReservationRequest struct {
	HotelID   string   `json:"hotel_id" binding:"required"`
	CheckIn   string   `json:"check_in" binding:"required"`
	CheckOut  string   `json:"check_out" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpdateLocationRequest reports a position update for tracking
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

const dateLayout = "2006-01-02"

// @Summary Create reservation
// @Description Book a hotel stay; the total is nights times the nightly rate
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReservationRequest true "Booking request"
// @Success 201 {object} models.Reservation
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /reservations [post]
func (s *Server) createReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check_in date, expected YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check_out date, expected YYYY-MM-DD"})
		return
	}
	if !checkOut.After(checkIn) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be after check_in"})
		return
	}

	var hotel models.Hotel
	if err := models.FindByID(s.db, req.HotelID, &hotel); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load hotel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	nights := math.Round(checkOut.Sub(checkIn).Hours() / 24)

	session, _ := GetSessionData(c)
	reservation := &models.Reservation{
		UserID:     session.UserID,
		HotelID:    hotel.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: nights * hotel.PricePerNight,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}
	if err := s.db.Create(reservation).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create reservation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		return
	}

	s.logger.Info().
		Str("reservation_id", reservation.ID).
		Str("hotel_id", hotel.ID).
		Str("user_id", session.UserID).
		Float64("total_price", reservation.TotalPrice).
		Msg("Reservation created")

	c.JSON(http.StatusCreated, reservation)
}

// @Summary List reservations
// @Description List all reservations (admin only)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Reservation
// @Router /reservations [get]
func (s *Server) listReservations(c *gin.Context) {
	var reservations []models.Reservation
	err := s.db.Preload("Hotel").Preload("User").
		Order("created_at DESC").
		Find(&reservations).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list reservations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// loadOwnReservation loads a reservation the session may see: its own, or any
// for admins.
func (s *Server) loadOwnReservation(c *gin.Context, id string) (*models.Reservation, bool) {
	var reservation models.Reservation
	if err := models.FindByIDWithPreload(s.db, id, &reservation, "Hotel"); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		} else {
			s.logger.Error().Err(err).Str("reservation_id", id).Msg("Failed to load reservation")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	session, _ := GetSessionData(c)
	if session.Role != access.RoleAdmin && reservation.UserID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your reservation"})
		return nil, false
	}
	return &reservation, true
}

// @Summary Track reservation
// @Description Get a reservation with its current tracking position (owner or admin)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} models.Reservation
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /reservations/{id}/track [get]
func (s *Server) trackReservation(c *gin.Context) {
	reservation, ok := s.loadOwnReservation(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// @Summary Update reservation location
// @Description Report the client's position for a reservation (owner or admin)
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body UpdateLocationRequest true "Position"
// @Success 200 {object} models.Reservation
// @Failure 403 {object} map[string]interface{}
// @Router /reservations/{id}/location [post]
func (s *Server) updateReservationLocation(c *gin.Context) {
	reservation, ok := s.loadOwnReservation(c, c.Param("id"))
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{"latitude": req.Latitude, "longitude": req.Longitude}
	if err := s.db.Model(reservation).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Str("reservation_id", reservation.ID).Msg("Failed to update location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// @Summary My reservations
// @Description List the authenticated user's reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Reservation
// @Router /me/reservations [get]
func (s *Server) myReservations(c *gin.Context) {
	session, _ := GetSessionData(c)

	var reservations []models.Reservation
	err := s.db.Preload("Hotel").
		Where("user_id = ?", session.UserID).
		Order("check_in DESC").
		Find(&reservations).Error
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to list reservations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}
