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

// UserService implements profile self-service and admin account management.
type UserService struct {
	users  ports.UserRepository
	events ports.UserEventPublisher
	log    zerolog.Logger
}

func NewUserService(users ports.UserRepository, events ports.UserEventPublisher, log zerolog.Logger) *UserService {
	return &UserService{users: users, events: events, log: log}
}

func (s *UserService) GetSelf(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateSelf changes name, email or password of the caller. Role is never touched.
func (s *UserService) UpdateSelf(ctx context.Context, userID int64, in ports.UpdateSelfInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ve := &domain.ValidationError{}
	if in.Name != nil {
		user.Name = checkName(ve, *in.Name)
	}
	emailChanged := false
	if in.Email != nil {
		email := checkEmail(ve, *in.Email)
		emailChanged = email != user.Email
		user.Email = email
	}
	if in.Password != nil {
		confirmation := ""
		if in.PasswordConfirmation != nil {
			confirmation = *in.PasswordConfirmation
		}
		checkNewPassword(ve, *in.Password, confirmation)
		if in.CurrentPassword != nil && !passwordMatches(user.PasswordHash, *in.CurrentPassword) {
			ve.Add("current_password", "current password is incorrect")
		}
	}
	if !ve.Empty() {
		return nil, ve
	}

	if emailChanged {
		if err := ensureEmailFree(ctx, s.users, user.Email, user.ID); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update self: hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	updated, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.log, domain.NewUserEvent(domain.EventUserUpdated, updated, 0))
	return updated, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// CreateUser adds an account with an admin-selected role (default user).
func (s *UserService) CreateUser(ctx context.Context, actorID int64, in ports.CreateUserInput) (*domain.User, error) {
	ve := &domain.ValidationError{}
	name := checkName(ve, in.Name)
	email := checkEmail(ve, in.Email)
	checkPasswordLength(ve, in.Password)
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		ve.Add("role", "role must be one of: admin user")
	}
	if !ve.Empty() {
		return nil, ve
	}

	if err := ensureEmailFree(ctx, s.users, email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, emailTaken()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("actor_id", actorID).Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	publish(ctx, s.events, s.log, domain.NewUserEvent(domain.EventUserCreated, user, actorID))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateUser changes name, email or role of any account.
func (s *UserService) UpdateUser(ctx context.Context, actorID, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ve := &domain.ValidationError{}
	if in.Name != nil {
		user.Name = checkName(ve, *in.Name)
	}
	emailChanged := false
	if in.Email != nil {
		email := checkEmail(ve, *in.Email)
		emailChanged = email != user.Email
		user.Email = email
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok || *in.Role == "" {
			ve.Add("role", "role must be one of: admin user")
		}
		user.Role = role
	}
	if !ve.Empty() {
		return nil, ve
	}

	if emailChanged {
		if err := ensureEmailFree(ctx, s.users, user.Email, user.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("actor_id", actorID).Int64("user_id", id).Msg("user updated")
	publish(ctx, s.events, s.log, domain.NewUserEvent(domain.EventUserUpdated, updated, actorID))
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("actor_id", actorID).Int64("user_id", id).Msg("user deleted")
	publish(ctx, s.events, s.log, domain.NewUserEvent(domain.EventUserDeleted, user, actorID))
	return nil
}

func (s *UserService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.UpdatedAt = time.Now().UTC()
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, emailTaken()
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return updated, nil
}
