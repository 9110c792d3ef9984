package database

import (
	"context"
	"fmt"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	users *collection[entities.User]
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(store providers.StorageProvider) repositories.UserRepository {
	return &UserAdapter{
		users: newCollection(store, storage.KeyUsers, "user",
			func(u *entities.User) int64 { return u.ID },
			func(u *entities.User, id int64) { u.ID = id }),
	}
}

// List returns users, optionally by role
func (a *UserAdapter) List(ctx context.Context, filter repositories.UserFilter) ([]*entities.User, error) {
	users, err := a.users.all(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Role == "" {
		return users, nil
	}
	return filterItems(users, func(u *entities.User) bool { return u.Role == filter.Role }), nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	return a.users.get(ctx, id)
}

// GetByPhone retrieves a user by normalized phone number
func (a *UserAdapter) GetByPhone(ctx context.Context, phone string) (*entities.User, error) {
	users, err := a.users.all(ctx)
	if err != nil {
		return nil, err
	}
	phone = utils.NormalizePhone(phone)
	for _, u := range users {
		if utils.NormalizePhone(u.Phone) == phone {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with phone %s not found", phone))
}

// Create stores a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	return a.users.create(ctx, user)
}

// Update replaces a user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	return a.users.update(ctx, user)
}
