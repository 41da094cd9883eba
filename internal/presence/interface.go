package presence

import (
	"context"
	"time"
)

// Record is the durable presence state of one subject.
type Record struct {
	SubjectID string    `json:"subject_id"`
	Online    bool      `json:"online"`
	LastSeen  time.Time `json:"last_seen"`
	Sessions  int       `json:"sessions"`
}

// Change is delivered to listeners when a subject's presence flips.
type Change struct {
	SubjectID string    `json:"subject_id"`
	Online    bool      `json:"online"`
	At        time.Time `json:"at"`
}

// Store is the durable/shared side of presence: one record per subject,
// written through by the tracker, readable by other instances and
// dashboards. The tracker remains the only writer.
type Store interface {
	SetOnline(ctx context.Context, subjectID string) error
	SetOffline(ctx context.Context, subjectID string, lastSeen time.Time) error
	IsOnline(ctx context.Context, subjectID string) (bool, error)
	Close() error
}

// Listener receives presence transitions (for dashboards and tests).
type Listener func(Change)
