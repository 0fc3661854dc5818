package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/auth"
	"github.com/facilite-dev/facilite/internal/models"
)

var (
	errVenueRequired = errors.New("venue required")
	errVenueNotFound = errors.New("venue not found")
)

// RegisterClientRequest represents the client self-registration request
type RegisterClientRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
	Password    string `json:"password" binding:"required,min=6"`
}

// RegisterManagerRequest represents the admin-only manager registration
// request; the manager is linked to the hotel or restaurant it runs
type RegisterManagerRequest struct {
	Name         string      `json:"name" binding:"required"`
	PhoneNumber  string      `json:"phone_number" binding:"required,phone"`
	Password     string      `json:"password" binding:"required,min=6"`
	Role         access.Role `json:"role" binding:"required"`
	HotelID      string      `json:"hotel_id"`
	RestaurantID string      `json:"restaurant_id"`
}

// ClientLoginRequest represents the passwordless client login request
type ClientLoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
}

// ManagerLoginRequest represents the manager/admin login request
type ManagerLoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
	Password    string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        access.Role `json:"role"`
	User        *UserDetail `json:"user,omitempty"`
}

// UserDetail represents user information returned in responses
type UserDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email,omitempty"`
	Role        access.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
}

func userDetail(user *models.User) *UserDetail {
	return &UserDetail{
		ID:          user.ID,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Email:       user.Email,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
	}
}

func (s *Server) issueToken(c *gin.Context, user *models.User, includeUser bool) {
	token, err := auth.GenerateToken(user.ID, user.PhoneNumber, user.Role)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	resp := LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
	}
	if includeUser {
		resp.User = userDetail(user)
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Register client
// @Description Self-registration for clients, returns a token (auto-login)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterClientRequest true "Registration request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Router /auth/register/client [post]
func (s *Server) registerClient(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("phone_number = ?", req.PhoneNumber).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check phone number")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := &models.User{
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: passwordHash,
		Role:         access.RoleClient,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("phone_number", user.PhoneNumber).Msg("Client registered")

	s.issueToken(c, user, true)
}

// @Summary Register manager
// @Description Creates a hotel or restaurant manager and links it to the venue it runs (admin only)
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterManagerRequest true "Registration request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /auth/register/manager [post]
func (s *Server) registerManager(c *gin.Context) {
	var req RegisterManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validManagerRole := false
	for _, role := range access.ManagerRoles {
		if req.Role == role {
			validManagerRole = true
		}
	}
	if !validManagerRole {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid manager role"})
		return
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("phone_number = ?", req.PhoneNumber).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to check phone number")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := &models.User{
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: passwordHash,
		Role:         req.Role,
		IsActive:     true,
	}

	// Create the manager and hand over the venue in one transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		switch req.Role {
		case access.RoleHotelManager:
			if req.HotelID == "" {
				return errVenueRequired
			}
			result := tx.Model(&models.Hotel{}).Where("id = ?", req.HotelID).Update("owner_id", user.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errVenueNotFound
			}
		case access.RoleRestaurantManager:
			if req.RestaurantID == "" {
				return errVenueRequired
			}
			result := tx.Model(&models.Restaurant{}).Where("id = ?", req.RestaurantID).Update("owner_id", user.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errVenueNotFound
			}
		}
		return nil
	})
	if err != nil {
		switch err {
		case errVenueRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Hotel or restaurant ID required for this manager role"})
		case errVenueNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		default:
			s.logger.Error().Err(err).Msg("Failed to create manager")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		}
		return
	}

	session, _ := GetSessionData(c)
	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", user.Role.String()).
		Str("created_by", session.UserID).
		Msg("Manager registered")

	s.issueToken(c, user, true)
}

// @Summary Client login
// @Description Passwordless login by phone number, rate limited per phone
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ClientLoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /auth/login/client [post]
func (s *Server) loginClient(c *gin.Context) {
	var req ClientLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.loginLimiter != nil && !s.loginLimiter.Allow(req.PhoneNumber) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, try again later"})
		return
	}

	var user models.User
	err := s.db.Where("phone_number = ? AND role = ?", req.PhoneNumber, access.RoleClient).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Phone number not recognized as a client"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account deactivated"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Client logged in")

	s.issueToken(c, &user, false)
}

// @Summary Manager login
// @Description Login for managers and admins with phone number and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ManagerLoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /auth/login/manager [post]
func (s *Server) loginManager(c *gin.Context) {
	var req ManagerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("phone_number = ?", req.PhoneNumber).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone number or password"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.PasswordHash == "" || auth.VerifyPassword(req.Password, user.PasswordHash) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone number or password"})
		return
	}

	if !user.HasManagerLogin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "This role cannot log in here"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account deactivated"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("Manager logged in")

	s.issueToken(c, &user, false)
}

// @Summary Get current user
// @Description Get information about the currently authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserDetail
// @Failure 401 {object} map[string]interface{}
// @Router /auth/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	session, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", session.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, userDetail(&user))
}
