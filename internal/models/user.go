package models

import "time"

// Role represents the two application roles gating the review workflow.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

// Identity is the verified identity returned by the external identity provider.
// It is immutable for a given login event.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// Session binds a verified identity and its derived role to a device until
// logout or credential expiry.
type Session struct {
	SubjectID  string    `json:"subject_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Credential string    `json:"credential"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
