package ports

import (
	"context"

	"github.com/userdesk/user-management/internal/core/domain"
)

// RegisterInput carries self-service sign-up data.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User    *domain.User
	Token   string
	Session domain.Session
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, session domain.Session) error
	// Authenticate resolves a bearer token to the current state of its user.
	Authenticate(ctx context.Context, token string) (*domain.User, domain.Session, error)
}
