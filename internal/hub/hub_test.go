package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/config"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		WriteWait:      time.Second,
		PongWait:       time.Second,
		PingInterval:   time.Second,
		SendBufferSize: 8,
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(testWSConfig())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func addClient(t *testing.T, h *Hub, clientID, userID string) *Client {
	t.Helper()
	c := NewClient(clientID, h, nil, testWSConfig())
	c.Authenticate(domain.Identity{UserID: userID, Role: domain.RoleBuyer}, "sess-"+clientID)
	h.Register(c)
	h.Bind(c)
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func waitForCount(t *testing.T, h *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ConnectionCount(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connection count for %s never reached %d", userID, want)
}

func TestNotifyUsersReachesEveryConnection(t *testing.T) {
	h := startHub(t)

	alice1 := addClient(t, h, "c1", "alice")
	alice2 := addClient(t, h, "c2", "alice")
	bob := addClient(t, h, "c3", "bob")
	waitForCount(t, h, "alice", 2)
	waitForCount(t, h, "bob", 1)

	require.NoError(t, h.NotifyUsers([]string{"alice"}, map[string]string{"hello": "world"}))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(receive(t, alice1), &payload))
	assert.Equal(t, "world", payload["hello"])
	receive(t, alice2)

	select {
	case <-bob.Send:
		t.Fatal("bob should not receive alice's notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyUsersSkipsOfflineUsers(t *testing.T) {
	h := startHub(t)

	alice := addClient(t, h, "c1", "alice")
	waitForCount(t, h, "alice", 1)

	// No connection for carol; delivery to her is silently skipped.
	require.NoError(t, h.NotifyUsers([]string{"alice", "carol"}, "ping"))
	receive(t, alice)
}

func TestUnauthenticatedClientReceivesNothing(t *testing.T) {
	h := startHub(t)

	c := NewClient("c1", h, nil, testWSConfig())
	h.Register(c)
	h.Bind(c) // no identity, must be a no-op

	require.NoError(t, h.NotifyUsers([]string{""}, "ping"))

	select {
	case <-c.Send:
		t.Fatal("unauthenticated client must not be a fan-out target")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterRemovesFanOutTarget(t *testing.T) {
	h := startHub(t)

	c := addClient(t, h, "c1", "alice")
	waitForCount(t, h, "alice", 1)

	h.Unregister(c)
	waitForCount(t, h, "alice", 0)
	require.Eventually(t, c.Closed, time.Second, 5*time.Millisecond)
}

func TestSendAfterEvictionDoesNotPanic(t *testing.T) {
	cfg := testWSConfig()
	cfg.SendBufferSize = 1
	h := NewHub(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	c := NewClient("c1", h, nil, cfg)
	c.Authenticate(domain.Identity{UserID: "alice", Role: domain.RoleBuyer}, "sess-c1")
	h.Register(c)
	h.Bind(c)
	waitForCount(t, h, "alice", 1)

	// Fill the one-slot buffer, then broadcast so the hub evicts the
	// slow client.
	require.NoError(t, c.SendMessage("fill"))
	require.NoError(t, h.NotifyUsers([]string{"alice"}, "overflow"))
	waitForCount(t, h, "alice", 0)

	// A read pump or auth timer may still try to queue a frame after
	// the eviction; that must be a silent drop, never a panic.
	assert.NotPanics(t, func() {
		assert.NoError(t, c.SendMessage("late frame"))
	})
	require.Eventually(t, c.Closed, time.Second, 5*time.Millisecond)
}

func TestShutdownIdempotent(t *testing.T) {
	h := startHub(t)

	c := addClient(t, h, "c1", "alice")
	waitForCount(t, h, "alice", 1)

	h.Unregister(c)
	waitForCount(t, h, "alice", 0)
	h.Unregister(c)
	c.shutdown()
	require.Eventually(t, c.Closed, time.Second, 5*time.Millisecond)
}
