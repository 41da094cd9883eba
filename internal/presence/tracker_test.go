package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
)

func newTestTracker(t *testing.T) (*Tracker, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	tr := NewTracker(NewMemoryStore(), Config{
		HeartbeatInterval: 15 * time.Second,
		GraceMultiplier:   3,
	})
	tr.now = clk.Now
	return tr, clk
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func buyer(id string) domain.Identity {
	return domain.Identity{UserID: id, Username: "u-" + id, Role: domain.RoleBuyer}
}

func TestRegisterSessionFlipsOnline(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	assert.False(t, tr.IsOnline("alice"))

	s := tr.RegisterSession(ctx, buyer("alice"))
	require.NotEmpty(t, s.ID)
	assert.True(t, tr.IsOnline("alice"))
	assert.Equal(t, 1, tr.SessionCount("alice"))
}

func TestMultiDevicePresence(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	s1 := tr.RegisterSession(ctx, buyer("alice"))
	s2 := tr.RegisterSession(ctx, buyer("alice"))
	assert.Equal(t, 2, tr.SessionCount("alice"))

	// Dropping one device keeps the subject online.
	tr.UnregisterSession(ctx, s1.ID)
	assert.True(t, tr.IsOnline("alice"))

	tr.UnregisterSession(ctx, s2.ID)
	assert.False(t, tr.IsOnline("alice"))
}

func TestUnregisterSessionIdempotent(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	var changes []Change
	tr.Subscribe(func(ch Change) { changes = append(changes, ch) })

	s := tr.RegisterSession(ctx, buyer("alice"))
	tr.UnregisterSession(ctx, s.ID)
	tr.UnregisterSession(ctx, s.ID)
	tr.UnregisterSession(ctx, "no-such-session")

	assert.False(t, tr.IsOnline("alice"))
	// One online transition, one offline transition; repeats are no-ops.
	require.Len(t, changes, 2)
	assert.True(t, changes[0].Online)
	assert.False(t, changes[1].Online)
}

func TestHeartbeatKeepsSessionAlive(t *testing.T) {
	tr, clk := newTestTracker(t)
	ctx := context.Background()

	s := tr.RegisterSession(ctx, buyer("alice"))

	// Stay under the grace period by heartbeating.
	for i := 0; i < 6; i++ {
		clk.Advance(15 * time.Second)
		tr.Heartbeat(s.ID)
		tr.sweep(ctx)
	}
	assert.True(t, tr.IsOnline("alice"))
}

func TestSweepExpiresSilentSessions(t *testing.T) {
	tr, clk := newTestTracker(t)
	ctx := context.Background()

	tr.RegisterSession(ctx, buyer("alice"))
	live := tr.RegisterSession(ctx, buyer("bob"))

	// Grace period is 3x the 15s interval. Advance past it with only
	// bob heartbeating.
	clk.Advance(46 * time.Second)
	tr.Heartbeat(live.ID)
	tr.sweep(ctx)

	assert.False(t, tr.IsOnline("alice"))
	assert.True(t, tr.IsOnline("bob"))
}

func TestHeartbeatUnknownSessionIsNoOp(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.Heartbeat("no-such-session")
	assert.False(t, tr.IsOnline("anyone"))
}

func TestSnapshot(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	tr.RegisterSession(ctx, buyer("alice"))
	tr.RegisterSession(ctx, buyer("alice"))
	tr.RegisterSession(ctx, buyer("bob"))

	snap := tr.Snapshot()
	require.Len(t, snap, 2)

	byID := make(map[string]Record)
	for _, r := range snap {
		byID[r.SubjectID] = r
	}
	assert.Equal(t, 2, byID["alice"].Sessions)
	assert.Equal(t, 1, byID["bob"].Sessions)
	assert.True(t, byID["alice"].Online)
}

func TestStoreSeesSessionLifecycle(t *testing.T) {
	store := NewMemoryStore()
	tr := NewTracker(store, Config{
		HeartbeatInterval: 15 * time.Second,
		GraceMultiplier:   3,
	})
	ctx := context.Background()

	online, err := store.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online)

	s := tr.RegisterSession(ctx, buyer("alice"))
	online, err = store.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, online)

	tr.UnregisterSession(ctx, s.ID)
	online, err = store.IsOnline(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, online)
}

func TestGracePeriodDefaults(t *testing.T) {
	cfg := Config{HeartbeatInterval: 10 * time.Second}
	assert.Equal(t, 30*time.Second, cfg.GracePeriod())

	cfg.GraceMultiplier = 2
	assert.Equal(t, 20*time.Second, cfg.GracePeriod())
}
