package ports

import (
	"context"

	"github.com/userdesk/user-management/internal/core/domain"
)

// UserRepository is the credential store.
//
// Implementations return domain.ErrUserNotFound for unknown ids or emails and
// domain.ErrUserExists when the email unique constraint is violated.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns every account ordered by id.
	List(ctx context.Context) ([]*domain.User, error)
	// Update persists name, email, password hash and role of an existing user.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
