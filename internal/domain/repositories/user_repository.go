package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// UserFilter narrows user listings
type UserFilter struct {
	Role entities.Role
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	List(ctx context.Context, filter UserFilter) ([]*entities.User, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByPhone returns a NotFound error when no user has the phone
	GetByPhone(ctx context.Context, phone string) (*entities.User, error)

	Create(ctx context.Context, user *entities.User) error
	Update(ctx context.Context, user *entities.User) error
}
