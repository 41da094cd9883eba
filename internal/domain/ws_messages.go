package domain

import "time"

// WebSocket frame types from the client.
const (
	MsgTypeAuth          = "auth"
	MsgTypeHeartbeat     = "heartbeat"
	MsgTypePostMessage   = "post_message"
	MsgTypeEditMessage   = "edit_message"
	MsgTypeDeleteMessage = "delete_message"
)

// WebSocket frame types to the client.
const (
	MsgTypeAuthResult     = "auth_result"
	MsgTypeMessage        = "message"
	MsgTypeMessageEdited  = "message_edited"
	MsgTypeMessageDeleted = "message_deleted"
	MsgTypeError          = "error"
)

// Error codes carried in error frames.
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRoomNotFound    = "ROOM_NOT_FOUND"
	ErrCodeNotAMember      = "NOT_A_MEMBER"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// BaseFrame is the envelope all client frames share.
type BaseFrame struct {
	Type string `json:"type"`
}

// Client -> Server frames

// AuthFrame carries the bearer credential. It must be the first frame on
// a new connection; the transport is not plain HTTP so the credential
// travels in the frame body, not a header.
type AuthFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type HeartbeatFrame struct {
	Type string `json:"type"`
}

type PostMessageFrame struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

type EditMessageFrame struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

type DeleteMessageFrame struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

// Server -> Client frames

type AuthResultFrame struct {
	Type      string `json:"type"`
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// MessageFrame is the fan-out envelope for a persisted message.
type MessageFrame struct {
	Type       string    `json:"type"`
	MessageID  string    `json:"message_id"`
	RoomID     string    `json:"room_id"`
	SenderID   string    `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	Flagged    bool      `json:"flagged"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageEventFrame announces an edit or soft delete. Content never
// changes after creation, so the frame carries only the flag flip.
type MessageEventFrame struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	RoomID    string `json:"room_id"`
	ActorID   string `json:"actor_id"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorFrame(code, message string) *ErrorFrame {
	return &ErrorFrame{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}

// NewMessageFrame builds the fan-out frame for a persisted message.
func NewMessageFrame(m *Message) *MessageFrame {
	return &MessageFrame{
		Type:       MsgTypeMessage,
		MessageID:  m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Content:    m.Content,
		Flagged:    m.Flagged,
		CreatedAt:  m.CreatedAt,
	}
}
