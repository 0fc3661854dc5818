package server

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/geo"
	"github.com/facilite-dev/facilite/internal/models"
)

// CreateRestaurantRequest represents the admin-side restaurant creation request
type CreateRestaurantRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	OwnerID   string   `json:"owner_id"`
}

// AddMenuRequest represents a dish added to a restaurant's menu
type AddMenuRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
}

// NearbyOrder is an open order annotated with its distance from the restaurant
type NearbyOrder struct {
	Order      models.Order `json:"order"`
	DistanceKm float64      `json:"distance_km"`
}

// ownsRestaurant reports whether the session may manage the given restaurant.
func (s *Server) ownsRestaurant(c *gin.Context, restaurantID string) (*models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := models.FindByID(s.db, restaurantID, &restaurant); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		} else {
			s.logger.Error().Err(err).Str("restaurant_id", restaurantID).Msg("Failed to load restaurant")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	session, _ := GetSessionData(c)
	if session.Role != access.RoleAdmin && restaurant.OwnerID != session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not manage this restaurant"})
		return nil, false
	}
	return &restaurant, true
}

// @Summary Create restaurant
// @Description Create a restaurant (admin only)
// @Tags restaurants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRestaurantRequest true "Restaurant creation request"
// @Success 201 {object} models.Restaurant
// @Failure 400 {object} map[string]interface{}
// @Router /restaurants [post]
func (s *Server) createRestaurant(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, _ := GetSessionData(c)
	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = session.UserID
	}

	restaurant := &models.Restaurant{
		OwnerID:   ownerID,
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := s.db.Create(restaurant).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create restaurant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create restaurant"})
		return
	}

	s.logger.Info().Str("restaurant_id", restaurant.ID).Str("name", restaurant.Name).Msg("Restaurant created")

	c.JSON(http.StatusCreated, restaurant)
}

// @Summary List restaurants
// @Description List all restaurants
// @Tags restaurants
// @Produce json
// @Success 200 {array} models.Restaurant
// @Router /restaurants [get]
func (s *Server) listRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := s.db.Order("rating DESC, name ASC").Find(&restaurants).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list restaurants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// @Summary Get restaurant
// @Description Get a restaurant with its menu
// @Tags restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} models.Restaurant
// @Failure 404 {object} map[string]interface{}
// @Router /restaurants/{id} [get]
func (s *Server) getRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &restaurant, "Menus")
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load restaurant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// @Summary Add menu item
// @Description Add a dish to a restaurant's menu (admin or owning manager)
// @Tags restaurants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Param request body AddMenuRequest true "Dish to add"
// @Success 201 {object} models.Menu
// @Failure 403 {object} map[string]interface{}
// @Router /restaurants/{id}/menu [post]
func (s *Server) addMenu(c *gin.Context) {
	restaurant, ok := s.ownsRestaurant(c, c.Param("id"))
	if !ok {
		return
	}

	var req AddMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	menu := &models.Menu{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
	}
	if err := s.db.Create(menu).Error; err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to create menu item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, menu)
}

// @Summary List menu
// @Description List the menu of a restaurant
// @Tags restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param category query string false "Filter by category"
// @Success 200 {array} models.Menu
// @Router /restaurants/{id}/menu [get]
func (s *Server) listMenu(c *gin.Context) {
	restaurantID := c.Param("id")

	query := s.db.Where("restaurant_id = ?", restaurantID).Order("category ASC, name ASC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var menus []models.Menu
	if err := query.Find(&menus).Error; err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurantID).Msg("Failed to list menu")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, menus)
}

// @Summary Nearby orders
// @Description List a restaurant's orders within a delivery radius, closest first (admin or owning manager)
// @Tags restaurants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Param radius_km query number false "Radius in kilometers (default 10)"
// @Success 200 {array} NearbyOrder
// @Failure 400 {object} map[string]interface{}
// @Router /restaurants/{id}/nearby-orders [get]
func (s *Server) nearbyOrders(c *gin.Context) {
	restaurant, ok := s.ownsRestaurant(c, c.Param("id"))
	if !ok {
		return
	}

	if restaurant.Latitude == nil || restaurant.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant has no location"})
		return
	}

	radiusKm := 10.0
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
			return
		}
		radiusKm = parsed
	}

	var orders []models.Order
	err := s.db.Preload("Items").Preload("Items.Menu").
		Where("restaurant_id = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", restaurant.ID).
		Find(&orders).Error
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurant.ID).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	nearby := make([]NearbyOrder, 0, len(orders))
	for _, order := range orders {
		d := geo.DistanceKm(*restaurant.Latitude, *restaurant.Longitude, *order.Latitude, *order.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, NearbyOrder{Order: order, DistanceKm: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })

	c.JSON(http.StatusOK, nearby)
}
