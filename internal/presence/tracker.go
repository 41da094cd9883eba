package presence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// Session is one live transport connection tied to an authenticated
// subject. Sessions are created at handshake and destroyed on disconnect
// or heartbeat expiry; they are never resumed.
type Session struct {
	ID            string
	SubjectID     string
	Role          string
	ConnectedAt   time.Time
	LastHeartbeat time.Time
}

// Config tunes heartbeat supervision.
type Config struct {
	// HeartbeatInterval is the expected client heartbeat cadence and
	// the sweep interval.
	HeartbeatInterval time.Duration
	// GraceMultiplier sets the grace period as a multiple of the
	// heartbeat interval. Sessions silent longer than that are expired.
	GraceMultiplier int
}

// GracePeriod returns the sweep cutoff.
func (c Config) GracePeriod() time.Duration {
	m := c.GraceMultiplier
	if m < 2 {
		m = 3
	}
	return time.Duration(m) * c.HeartbeatInterval
}

// Tracker maintains one liveness record per subject. A subject is
// online iff at least one of its sessions is live; multiple concurrent
// sessions per subject (multi-device) are expected. Presence decays
// only through explicit unregister or the background sweep.
type Tracker struct {
	mu        sync.Mutex
	sessions  map[string]*Session            // session id -> session
	bySubject map[string]map[string]*Session // subject id -> session id -> session

	store     Store
	cfg       Config
	listeners []Listener

	now func() time.Time
}

// NewTracker creates a presence tracker writing through to store.
func NewTracker(store Store, cfg Config) *Tracker {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 15 * time.Second
	}
	return &Tracker{
		sessions:  make(map[string]*Session),
		bySubject: make(map[string]map[string]*Session),
		store:     store,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Subscribe registers a listener for presence transitions. Must be
// called before Run.
func (t *Tracker) Subscribe(fn Listener) {
	t.listeners = append(t.listeners, fn)
}

// RegisterSession creates a new session for an authenticated subject.
// The first live session flips the subject online.
func (t *Tracker) RegisterSession(ctx context.Context, id domain.Identity) *Session {
	now := t.now()
	s := &Session{
		ID:            uuid.New().String(),
		SubjectID:     id.UserID,
		Role:          id.Role,
		ConnectedAt:   now,
		LastHeartbeat: now,
	}

	t.mu.Lock()
	t.sessions[s.ID] = s
	subjectSessions, ok := t.bySubject[s.SubjectID]
	if !ok {
		subjectSessions = make(map[string]*Session)
		t.bySubject[s.SubjectID] = subjectSessions
	}
	first := len(subjectSessions) == 0
	subjectSessions[s.ID] = s
	t.mu.Unlock()

	if first {
		t.markOnline(ctx, s.SubjectID, now)
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldSessionID, s.ID).Str(log.FieldUserID, s.SubjectID).Msg("session registered")
	return s
}

// Heartbeat refreshes a session's liveness. Unknown or already expired
// sessions are a silent no-op; the client is expected to re-handshake.
func (t *Tracker) Heartbeat(sessionID string) {
	t.mu.Lock()
	if s, ok := t.sessions[sessionID]; ok {
		s.LastHeartbeat = t.now()
	}
	t.mu.Unlock()
}

// UnregisterSession tears a session down. Idempotent: unregistering the
// same id twice has the same observable effect as once. When the last
// session of a subject goes, presence flips offline and listeners fire.
func (t *Tracker) UnregisterSession(ctx context.Context, sessionID string) {
	now := t.now()

	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.sessions, sessionID)

	last := false
	if subjectSessions, ok := t.bySubject[s.SubjectID]; ok {
		delete(subjectSessions, sessionID)
		if len(subjectSessions) == 0 {
			delete(t.bySubject, s.SubjectID)
			last = true
		}
	}
	t.mu.Unlock()

	if last {
		t.markOffline(ctx, s.SubjectID, now)
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldSessionID, sessionID).Str(log.FieldUserID, s.SubjectID).Msg("session unregistered")
}

// IsOnline reports whether the subject has at least one live session.
func (t *Tracker) IsOnline(subjectID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bySubject[subjectID]) > 0
}

// SessionCount returns the number of live sessions for a subject.
func (t *Tracker) SessionCount(subjectID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bySubject[subjectID])
}

// Snapshot returns the current presence records, for dashboards.
func (t *Tracker) Snapshot() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]Record, 0, len(t.bySubject))
	for subjectID, sessions := range t.bySubject {
		var lastSeen time.Time
		for _, s := range sessions {
			if s.LastHeartbeat.After(lastSeen) {
				lastSeen = s.LastHeartbeat
			}
		}
		records = append(records, Record{
			SubjectID: subjectID,
			Online:    true,
			LastSeen:  lastSeen,
			Sessions:  len(sessions),
		})
	}
	return records
}

// Run drives the background sweep until ctx is cancelled. The sweep is
// the only place presence decays without an explicit client action; it
// covers abrupt network loss where no transport-level disconnect fires.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

// sweep expires sessions whose last heartbeat is older than the grace
// period, exactly as if the client had disconnected.
func (t *Tracker) sweep(ctx context.Context) {
	cutoff := t.now().Add(-t.cfg.GracePeriod())

	t.mu.Lock()
	var expired []string
	for id, s := range t.sessions {
		if s.LastHeartbeat.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	t.mu.Unlock()

	for _, id := range expired {
		l := log.Ctx(ctx)
		l.Info().Str(log.FieldSessionID, id).Msg("session expired by sweep")
		t.UnregisterSession(ctx, id)
	}
}

func (t *Tracker) markOnline(ctx context.Context, subjectID string, at time.Time) {
	if err := t.store.SetOnline(ctx, subjectID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, subjectID).Msg("failed to persist online presence")
	}
	t.notify(Change{SubjectID: subjectID, Online: true, At: at})
}

func (t *Tracker) markOffline(ctx context.Context, subjectID string, at time.Time) {
	if err := t.store.SetOffline(ctx, subjectID, at); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, subjectID).Msg("failed to persist offline presence")
	}
	t.notify(Change{SubjectID: subjectID, Online: false, At: at})
}

func (t *Tracker) notify(ch Change) {
	for _, fn := range t.listeners {
		fn(ch)
	}
}
