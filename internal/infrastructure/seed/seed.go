// Package seed creates the bootstrap accounts a fresh deployment needs so an
// administrator can sign in before any user has registered.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

// Account is a user the seeder ensures exists.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// DefaultAccounts returns the admin account plus a regular test account.
func DefaultAccounts(adminEmail, adminPassword string) []Account {
	return []Account{
		{Name: "Admin User", Email: adminEmail, Password: adminPassword, Role: domain.RoleAdmin},
		{Name: "Test User", Email: "user@example.com", Password: adminPassword, Role: domain.RoleUser},
	}
}

type Seeder struct {
	users   ports.UserRepository
	service ports.UserService
	log     zerolog.Logger
}

func NewSeeder(users ports.UserRepository, service ports.UserService, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, service: service, log: log}
}

// Run creates every missing account. Existing accounts are left untouched,
// so it is safe to run on every start. It returns how many were created.
func (s *Seeder) Run(ctx context.Context, accounts []Account) (int, error) {
	created := 0
	for _, a := range accounts {
		email := domain.NormalizeEmail(a.Email)
		_, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			s.log.Debug().Str("email", email).Msg("seed account already present")
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return created, fmt.Errorf("seed: lookup %s: %w", email, err)
		}

		u, err := s.service.CreateUser(ctx, 0, ports.CreateUserInput{
			Name:     a.Name,
			Email:    email,
			Password: a.Password,
			Role:     string(a.Role),
		})
		if err != nil {
			return created, fmt.Errorf("seed: create %s: %w", email, err)
		}
		created++
		s.log.Info().Int64("user_id", u.ID).Str("email", u.Email).Str("role", string(u.Role)).Msg("seeded account")
	}
	return created, nil
}
