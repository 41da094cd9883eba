package chat

import (
	"context"
	"errors"
	"time"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
)

var (
	// ErrRoomNotFound is returned when the room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotAMember is returned when the user is not the buyer, the
	// seller, or the room's assigned moderator.
	ErrNotAMember = errors.New("not a member of this room")
	// ErrMessageNotFound is returned when the message does not exist in
	// the room.
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotSender is returned when a user edits or deletes a message
	// they did not send.
	ErrNotSender = errors.New("not the sender of this message")
	// ErrEmptyContent is returned for blank message content.
	ErrEmptyContent = errors.New("message content is empty")
	// ErrContentTooLong is returned when content exceeds the size limit.
	ErrContentTooLong = errors.New("message content too long")
	// ErrInvalidRoom rejects a room whose buyer and seller coincide.
	ErrInvalidRoom = errors.New("buyer and seller must differ")
)

// MaxContentLength bounds message content in bytes.
const MaxContentLength = 4096

// Notifier fans a payload out to every live connection of the given
// users. Delivery is best-effort.
type Notifier interface {
	NotifyUsers(userIDs []string, message interface{}) error
}

// Service is the chat pipeline: room lifecycle, message intake with
// content screening, history, and fan-out to live participants.
type Service interface {
	CreateRoom(ctx context.Context, buyer domain.Identity, req domain.CreateRoomRequest) (*domain.ChatRoom, error)
	GetRoom(ctx context.Context, id string) (*domain.ChatRoom, error)
	// PostMessage validates, screens, persists and fans out one message.
	// Messages within a room are delivered in persisted order.
	PostMessage(ctx context.Context, sender domain.Identity, roomID, content string) (*domain.Message, error)
	// EditMessage marks a message as edited. Content never changes.
	EditMessage(ctx context.Context, sender domain.Identity, roomID, messageID string) (*domain.Message, error)
	// DeleteMessage soft-deletes a message. The record survives for the
	// moderation trail.
	DeleteMessage(ctx context.Context, sender domain.Identity, roomID, messageID string) (*domain.Message, error)
	// RoomHistory returns messages oldest first, bounded by limit and an
	// optional upper timestamp.
	RoomHistory(ctx context.Context, requester domain.Identity, roomID string, limit int, before time.Time) ([]domain.Message, error)
}
