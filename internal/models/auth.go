package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// GoogleLoginRequest carries the opaque Google Identity Services credential.
type GoogleLoginRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// AuthUser describes the authenticated user in the login response.
type AuthUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// GoogleAuthResponse is the wire contract of the session issuance endpoint.
type GoogleAuthResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token,omitempty"`
	User    *AuthUser `json:"user,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// JWTClaims represents the JWT payload for session credentials.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
