package auth

import "github.com/facilite-dev/facilite/internal/access"

// SessionData represents the authenticated session context for a request,
// derived from verified token claims plus the user row.
type SessionData struct {
	UserID      string      `json:"user_id"`
	PhoneNumber string      `json:"phone_number"`
	Role        access.Role `json:"role"`
}

// HasRole reports whether the session holds one of the given roles.
func (s *SessionData) HasRole(roles ...access.Role) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}
