package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/facilite-dev/facilite/internal/access"
	"github.com/facilite-dev/facilite/internal/auth"
	"github.com/facilite-dev/facilite/internal/models"
)

// CreateUserRequest represents the admin-side user creation request,
// used for courier accounts and additional admins
type CreateUserRequest struct {
	Name        string      `json:"name" binding:"required"`
	PhoneNumber string      `json:"phone_number" binding:"required,phone"`
	Password    string      `json:"password" binding:"required,min=6"`
	Role        access.Role `json:"role" binding:"required"`
}

// @Summary List users
// @Description List all user accounts, optionally filtered by role (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Success 200 {array} UserDetail
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	query := s.db.Model(&models.User{}).Order("created_at DESC")
	if role := c.Query("role"); role != "" {
		if !access.Role(role).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]*UserDetail, 0, len(users))
	for i := range users {
		details = append(details, userDetail(&users[i]))
	}
	c.JSON(http.StatusOK, details)
}

// @Summary Create user
// @Description Create a user account with any role (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User creation request"
// @Success 201 {object} UserDetail
// @Failure 400 {object} map[string]interface{}
// @Router /users [post]
func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
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
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	session, _ := GetSessionData(c)
	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", user.Role.String()).
		Str("created_by", session.UserID).
		Msg("User created")

	c.JSON(http.StatusCreated, userDetail(user))
}

// @Summary Delete user
// @Description Deactivate a user account (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	userID := c.Param("id")

	session, _ := GetSessionData(c)
	if session.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	// Deactivation instead of a hard delete keeps reservation and payment
	// history intact; the auth middleware rejects inactive accounts.
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_active", false)
	if result.Error != nil {
		s.logger.Error().Err(result.Error).Str("user_id", userID).Msg("Failed to deactivate user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	s.logger.Info().Str("user_id", userID).Str("deleted_by", session.UserID).Msg("User deactivated")

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}
