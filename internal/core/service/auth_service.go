package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/userdesk/user-management/internal/core/domain"
	"github.com/userdesk/user-management/internal/core/ports"
)

// AuthService implements registration, login, logout and token resolution.
type AuthService struct {
	users   ports.UserRepository
	tokens  ports.TokenIssuer
	revoked ports.RevocationStore
	events  ports.UserEventPublisher
	log     zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	revoked ports.RevocationStore,
	events ports.UserEventPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		events:  events,
		log:     log,
	}
}

// Register creates a role=user account and signs it in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	ve := &domain.ValidationError{}
	name := checkName(ve, in.Name)
	email := checkEmail(ve, in.Email)
	checkNewPassword(ve, in.Password, in.PasswordConfirmation)
	if !ve.Empty() {
		return nil, ve
	}

	if err := ensureEmailFree(ctx, s.users, email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, emailTaken()
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	publish(ctx, s.events, s.log, domain.NewUserEvent(domain.EventUserRegistered, user, 0))
	return s.issue(user)
}

// Login verifies the password and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !passwordMatches(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes the token identified by session until it would have expired.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if session.TokenID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.revoked.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Debug().Int64("user_id", session.UserID).Msg("session revoked")
	return nil
}

// Authenticate decodes token, rejects revoked tokens and reloads the user so
// that deletions and role changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, domain.Session, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.Session{}, domain.ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return nil, domain.Session{}, fmt.Errorf("authenticate: revocation lookup: %w", err)
	}
	if revoked {
		return nil, domain.Session{}, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Session{}, domain.ErrUnauthenticated
		}
		return nil, domain.Session{}, fmt.Errorf("authenticate: %w", err)
	}

	return user, session, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, session, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{User: user, Token: token, Session: session}, nil
}

// ensureEmailFree fails with a ValidationError when email belongs to an
// account other than exceptID.
func ensureEmailFree(ctx context.Context, users ports.UserRepository, email string, exceptID int64) error {
	existing, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("lookup email: %w", err)
	case existing.ID != exceptID:
		return emailTaken()
	}
	return nil
}

// publish is best effort; the change is already committed.
func publish(ctx context.Context, events ports.UserEventPublisher, log zerolog.Logger, ev domain.UserEvent) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", string(ev.Type)).
			Int64("user_id", ev.UserID).
			Msg("failed to publish user event")
	}
}
