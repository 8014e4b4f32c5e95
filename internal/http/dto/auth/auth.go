// Package auth holds the request and response bodies of the auth routes.
package auth

import (
	"time"

	"github.com/dropDatabas3/hellologin/internal/domain/types"
)

// LoginRequest is the POST /login body (JSON or form).
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginSuccess is {"success": true}.
type LoginSuccess struct {
	Success bool `json:"success"`
}

// LoginError is {"error": "<localized message>"}.
type LoginError struct {
	Error string `json:"error"`
}

// RegisterRequest completes a pending social registration.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Language  string `json:"language,omitempty"`
}

// PendingResponse is the GET /register/pending body.
type PendingResponse struct {
	Provider   string         `json:"provider"`
	Identifier string         `json:"identifier"`
	Profile    map[string]any `json:"profile,omitempty"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          string   `json:"id,omitempty"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"display_name"`
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Language    string   `json:"language,omitempty"`
	ExternalIDs []string `json:"external_ids"`
}

// NewUserResponse maps a user; the password hash never leaves the server.
func NewUserResponse(u *types.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Language:    u.LanguageCode(),
		ExternalIDs: u.ExternalIDs(),
	}
}

// RegisterResponse is the POST /register success body.
type RegisterResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}
