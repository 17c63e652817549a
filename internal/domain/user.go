package domain

import "time"

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        Role       `json:"role"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthSession is an issued access/refresh token pair.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	ExpiresAt    time.Time
	Revoked      bool
}

// Expired reports whether the access token is no longer accepted at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return s.Revoked || !now.Before(s.ExpiresAt)
}
