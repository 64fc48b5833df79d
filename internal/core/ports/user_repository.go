package ports

import (
	"context"

	"github.com/taskhq/task-manager-api/internal/core/domain"
)

// UserRepository defines the interface for account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByLogin resolves a username or an email address to an account.
	FindByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
