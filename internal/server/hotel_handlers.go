package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/models"
)

// CreateHotelRequest represents the admin-side hotel creation request
type CreateHotelRequest struct {
	Name          string   `json:"name" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	City          string   `json:"city"`
	PricePerNight float64  `json:"price_per_night" binding:"required,gt=0"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	OwnerID       string   `json:"owner_id"`
}

// UpdateHotelRequest represents a partial hotel update
type UpdateHotelRequest struct {
	Name          *string  `json:"name"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	PricePerNight *float64 `json:"price_per_night"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Rating        *float64 `json:"rating"`
}

// AddRoomRequest represents a room added to a hotel
type AddRoomRequest struct {
	RoomNumber    string  `json:"room_number" binding:"required"`
	Capacity      int     `json:"capacity" binding:"required,gt=0"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
}

// ownsHotel reports whether the session may manage the given hotel. Admins
// manage every hotel; a hotel manager only the ones it owns.
func (s *Server) ownsHotel(c *gin.Context, hotelID string) (*models.Hotel, bool) {
	var hotel models.Hotel
	if err := models.FindByID(s.db, hotelID, &hotel); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		} else {
			s.logger.Error().Err(err).Str("hotel_id", hotelID).Msg("Failed to load hotel")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	session, _ := GetSessionData(c)
	if session.Role != access.RoleAdmin && hotel.OwnerID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this hotel"})
		return nil, false
	}
	return &hotel, true
}

// @Summary Create hotel
// @Description Create a hotel (admin only)
// @Tags hotels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateHotelRequest true "Hotel creation request"
// @Success 201 {object} models.Hotel
// @Failure 400 {object} map[string]interface{}
// @Router /hotels [post]
func (s *Server) createHotel(c *gin.Context) {
	var req CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, _ := GetSessionData(c)
	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = session.UserID
	}

	hotel := &models.Hotel{
		OwnerID:       ownerID,
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		PricePerNight: req.PricePerNight,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	}
	if err := s.db.Create(hotel).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create hotel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hotel"})
		return
	}

	s.logger.Info().Str("hotel_id", hotel.ID).Str("name", hotel.Name).Msg("Hotel created")

	c.JSON(http.StatusCreated, hotel)
}

// @Summary List hotels
// @Description List hotels, optionally filtered by city
// @Tags hotels
// @Produce json
// @Param city query string false "Filter by city"
// @Success 200 {array} models.Hotel
// @Router /hotels [get]
func (s *Server) listHotels(c *gin.Context) {
	query := s.db.Order("rating DESC, name ASC")
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var hotels []models.Hotel
	if err := query.Find(&hotels).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list hotels")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, hotels)
}

// @Summary Get hotel
// @Description Get a hotel with its rooms
// @Tags hotels
// @Produce json
// @Param id path string true "Hotel ID"
// @Success 200 {object} models.Hotel
// @Failure 404 {object} map[string]interface{}
// @Router /hotels/{id} [get]
func (s *Server) getHotel(c *gin.Context) {
	var hotel models.Hotel
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &hotel, "Rooms")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load hotel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// @Summary Update hotel
// @Description Update hotel fields (admin or owning manager)
// @Tags hotels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hotel ID"
// @Param request body UpdateHotelRequest true "Fields to update"
// @Success 200 {object} models.Hotel
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /hotels/{id} [put]
func (s *Server) updateHotel(c *gin.Context) {
	hotel, ok := s.ownsHotel(c, c.Param("id"))
	if !ok {
		return
	}

	var req UpdateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PricePerNight != nil {
		if *req.PricePerNight <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price per night must be positive"})
			return
		}
		updates["price_per_night"] = *req.PricePerNight
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := s.db.Model(hotel).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Str("hotel_id", hotel.ID).Msg("Failed to update hotel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hotel"})
		return
	}

	c.JSON(http.StatusOK, hotel)
}

// @Summary Delete hotel
// @Description Delete a hotel and its rooms (admin only)
// @Tags hotels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hotel ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /hotels/{id} [delete]
func (s *Server) deleteHotel(c *gin.Context) {
	hotelID := c.Param("id")

	result := s.db.Where("id = ?", hotelID).Delete(&models.Hotel{})
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Str("hotel_id", hotelID).Msg("Failed to delete hotel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
		return
	}

	s.logger.Info().Str("hotel_id", hotelID).Msg("Hotel deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Hotel deleted"})
}

// @Summary Add room
// @Description Add a room to a hotel (admin or owning manager)
// @Tags hotels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hotel ID"
// @Param request body AddRoomRequest true "Room to add"
// @Success 201 {object} models.Room
// @Failure 403 {object} map[string]interface{}
// @Router /hotels/{id}/rooms [post]
func (s *Server) addRoom(c *gin.Context) {
	hotel, ok := s.ownsHotel(c, c.Param("id"))
	if !ok {
		return
	}

	var req AddRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := &models.Room{
		HotelID:       hotel.ID,
		RoomNumber:    req.RoomNumber,
		Capacity:      req.Capacity,
		PricePerNight: req.PricePerNight,
	}
	if err := s.db.Create(room).Error; err != nil {
		s.logger.Error().Err(err).Str("hotel_id", hotel.ID).Msg("Failed to create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// @Summary List rooms
// @Description List the rooms of a hotel
// @Tags hotels
// @Produce json
// @Param id path string true "Hotel ID"
// @Success 200 {array} models.Room
// @Router /hotels/{id}/rooms [get]
func (s *Server) listRooms(c *gin.Context) {
	hotelID := c.Param("id")

	var rooms []models.Room
	err := s.db.Where("hotel_id = ?", hotelID).Order("room_number ASC").Find(&rooms).Error
	if err != nil {
		s.logger.Error().Err(err).Str("hotel_id", hotelID).Msg("Failed to list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// @Summary List hotel reservations
// @Description List reservations of a hotel (admin or owning manager)
// @Tags hotels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hotel ID"
// @Success 200 {array} models.Reservation
// @Failure 403 {object} map[string]interface{}
// @Router /hotels/{id}/reservations [get]
func (s *Server) listHotelReservations(c *gin.Context) {
	hotel, ok := s.ownsHotel(c, c.Param("id"))
	if !ok {
		return
	}

	var reservations []models.Reservation
	err := s.db.Preload("User").
		Where("hotel_id = ?", hotel.ID).
		Order("check_in DESC").
		Find(&reservations).Error
	if err != nil {
		s.logger.Error().Err(err).Str("hotel_id", hotel.ID).Msg("Failed to list reservations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}
