package audit

import (
	"context"
	"time"
)

// Audit action tags emitted by the chat and moderation core.
const (
	ActionAuth          = "session.auth"
	ActionAuthFailed    = "session.auth_failed"
	ActionDisconnect    = "session.disconnect"
	ActionPostMessage   = "chat.post_message"
	ActionEditMessage   = "chat.edit_message"
	ActionDeleteMessage = "chat.delete_message"
	ActionMessageFlag   = "chat.message_flagged"
	ActionCreateRoom    = "chat.create_room"
	ActionFileReport    = "moderation.file_report"
	ActionListAlerts    = "moderation.list_alerts"
	ActionAssign        = "moderation.assign_responsible"
	ActionUpdateStatus  = "moderation.update_status"
)

// Entity types referenced by audit events.
const (
	EntityMessage = "message"
	EntityRoom    = "room"
	EntityAlert   = "alert"
	EntitySession = "session"
)

// Event describes one privileged action. It is handed to a sink on a
// best-effort basis and never stored by the core itself.
type Event struct {
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id,omitempty"`
	Message    string    `json:"message,omitempty"`
	SourceAddr string    `json:"source_addr,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink is a one-way channel to an external audit log. The core only
// writes; it never reads back.
type Sink interface {
	Write(ctx context.Context, ev Event) error
	Close() error
}
