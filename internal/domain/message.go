package domain

import "time"

// Message is a persisted chat message. Content is immutable once created;
// only the edited/deleted/flagged booleans may change afterwards.
type Message struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	SenderID   string    `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	Edited     bool      `json:"edited"`
	Deleted    bool      `json:"deleted"`
	Flagged    bool      `json:"flagged"`
	CreatedAt  time.Time `json:"created_at"`
}
