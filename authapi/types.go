package authapi

import (
	"github.com/jrsteele09/go-school-gateway/internal/validation"
	"github.com/jrsteele09/go-school-gateway/users"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.Struct(r)
}

// LoginResponse is returned by POST /auth/login on success.
type LoginResponse struct {
	// User is the safe projection of the authenticated user.
	User users.User `json:"user"`

	// AccessToken is a short-lived JWT (15 minutes) sent as "Authorization: Bearer <token>".
	AccessToken string `json:"accessToken" validate:"required"`

	// RefreshToken is a long-lived JWT (30 days) exchanged at POST /auth/refresh.
	// It rotates on each use.
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (r *LoginResponse) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return r.User.Validate()
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is the rotated credential pair returned by POST /auth/refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (p *TokenPair) Validate() error {
	return validation.Struct(p)
}

// ErrorResponse is the error body the backend sends with non-2xx responses.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
