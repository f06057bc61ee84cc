package auth

import (
	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// LoginRequest carries donor or patient credentials.
type LoginRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     enums.UserRole `json:"role"`
}

// AdminLoginRequest carries admin credentials.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest trades an expired access token plus refresh token for a
// fresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionUser is the identity snapshot returned on login.
type SessionUser struct {
	ID            uuid.UUID        `json:"id"`
	Role          enums.UserRole   `json:"role"`
	FullName      string           `json:"fullName,omitempty"`
	Email         string           `json:"email,omitempty"`
	BloodGroup    enums.BloodGroup `json:"bloodGroup,omitempty"`
	EmailVerified bool             `json:"emailVerified"`
}

// LoginResponse is returned by every login variant.
type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         SessionUser `json:"user"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterAdminInput seeds a new admin account.
type RegisterAdminInput struct {
	Username string
	Password string
}
