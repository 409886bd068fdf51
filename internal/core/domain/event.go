package domain

import "time"

// UserEventType is the routing key of a lifecycle event.
type UserEventType string

const (
	EventUserRegistered UserEventType = "user.registered"
	EventUserCreated    UserEventType = "user.created"
	EventUserUpdated    UserEventType = "user.updated"
	EventUserDeleted    UserEventType = "user.deleted"
)

// UserEvent is emitted after a committed change to an account.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     int64         `json:"user_id"`
	Email      string        `json:"email"`
	Role       Role          `json:"role"`
	ActorID    int64         `json:"actor_id,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewUserEvent builds an event for u performed by actorID (0 for self-service).
func NewUserEvent(t UserEventType, u *User, actorID int64) UserEvent {
	return UserEvent{
		Type:       t,
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}
