package ports

import (
	"context"

	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// TokenPair is the access/refresh pair issued at login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields needed for self-registration. There is
// deliberately no role field: self-registered accounts are always plain
// users, elevation goes through CreateUser.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// CreateUserInput is the admin-only account creation payload.
type CreateUserInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

// AuthService defines the credential lifecycle use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// CreateUser creates an account with an explicit role. Callers must be
	// admin-gated before this is reached.
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}
