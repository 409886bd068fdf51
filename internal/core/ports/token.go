package ports

import (
	"context"
	"time"

	"github.com/userdesk/user-management/internal/core/domain"
)

// TokenIssuer mints and decodes bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, domain.Session, error)
	// Parse returns domain.ErrUnauthenticated for any malformed, forged or expired token.
	Parse(token string) (domain.Session, error)
}

// RevocationStore remembers tokens invalidated by logout until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
