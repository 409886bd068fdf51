package client

import (
	"errors"

	"github.com/userdesk/user-management/internal/core/domain"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrAccessDenied     = errors.New("access denied")
)

// Require checks the session before a command runs. An empty role only
// requires a signed-in user.
func Require(s *Session, role domain.Role) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if role != "" && s.User().Role != role {
		return ErrAccessDenied
	}
	return nil
}
