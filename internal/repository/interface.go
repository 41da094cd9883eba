package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStatusConflict is returned when a guarded status update loses
	// against a concurrent transition.
	ErrStatusConflict = errors.New("alert status changed concurrently")
)

// RoomRepository persists chat rooms. The room's moderator column is
// written only through AlertRepository.AssignResponsible, which mirrors
// alert assignments onto the room in the same transaction.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.ChatRoom) error
	GetByID(ctx context.Context, id string) (*domain.ChatRoom, error)
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByRoom returns messages for a room in persisted order
	// (oldest first). A zero `before` means no upper bound.
	ListByRoom(ctx context.Context, roomID string, limit int, before time.Time) ([]domain.Message, error)
	SetEdited(ctx context.Context, id string) error
	SetDeleted(ctx context.Context, id string) error
}

// AlertRepository persists monitoring alerts. Alerts are never deleted.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.MonitoringAlert) error
	GetByID(ctx context.Context, id string) (*domain.MonitoringAlert, error)
	// List returns all alerts, newest first.
	List(ctx context.Context) ([]domain.MonitoringAlert, error)
	// AssignResponsible sets the responsible moderator and mirrors the
	// assignment onto the alert's room (if any) in one transaction, so
	// alert and room can never name different moderators. Assigning a
	// non-nil responsible to an open alert advances it to in_review in
	// the same statement; concurrent assigns are last-writer-wins for
	// the pair as a whole. Returns the updated alert.
	AssignResponsible(ctx context.Context, id string, responsibleID *string) (*domain.MonitoringAlert, error)
	// UpdateStatusFrom transitions status guarded by the expected current
	// status; it returns ErrStatusConflict when the guard does not hold.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.AlertStatus) error
}
