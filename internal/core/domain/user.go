package domain

import (
	"errors"
	"time"

	"github.com/taskhq/task-manager-api/internal/auth"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTooManyAttempts = errors.New("too many login attempts")

// User models an account holder. PasswordHash is the only durable
// representation of the secret; it is never serialized into API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity projects the account onto the request-scoped caller identity.
func (u *User) Identity() auth.Identity {
	return auth.Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
