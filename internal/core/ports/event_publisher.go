package ports

import (
	"context"

	"github.com/userdesk/user-management/internal/core/domain"
)

// UserEventPublisher forwards committed account changes to other systems.
type UserEventPublisher interface {
	Publish(ctx context.Context, event domain.UserEvent) error
}
