package ports

import (
	"context"

	"github.com/userdesk/user-management/internal/core/domain"
)

// UpdateSelfInput is a partial profile update. Nil fields are left unchanged.
type UpdateSelfInput struct {
	Name                 *string
	Email                *string
	CurrentPassword      *string
	Password             *string
	PasswordConfirmation *string
}

// CreateUserInput is an admin-issued account creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput is an admin partial update. Nil fields are left unchanged.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *string
}

// UserService covers the self-service and admin account operations.
// Admin methods take the acting admin's id for auditing.
type UserService interface {
	GetSelf(ctx context.Context, userID int64) (*domain.User, error)
	UpdateSelf(ctx context.Context, userID int64, in UpdateSelfInput) (*domain.User, error)

	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, actorID int64, in CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, actorID, id int64, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
}
