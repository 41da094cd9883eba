package moderation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/domain"
	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/internal/repository"
)

// fakeAlertRepo mirrors the GORM repository's contract, including the
// transactional pairing of alert assignment with the room moderator
// write: both land under one lock, as the real repo does under one
// transaction.
type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[string]*domain.MonitoringAlert
	order  []string
	rooms  *fakeRoomRepo
}

func newFakeAlertRepo(rooms *fakeRoomRepo) *fakeAlertRepo {
	return &fakeAlertRepo{
		alerts: make(map[string]*domain.MonitoringAlert),
		rooms:  rooms,
	}
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *domain.MonitoringAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *alert
	r.alerts[alert.ID] = &cp
	r.order = append(r.order, alert.ID)
	return nil
}

func (r *fakeAlertRepo) GetByID(_ context.Context, id string) (*domain.MonitoringAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAlertRepo) List(_ context.Context) ([]domain.MonitoringAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.MonitoringAlert, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, *r.alerts[r.order[i]])
	}
	return out, nil
}

func (r *fakeAlertRepo) AssignResponsible(ctx context.Context, id string, responsibleID *string) (*domain.MonitoringAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.ResponsibleID = responsibleID
	if responsibleID != nil && a.Status == domain.AlertStatusOpen {
		a.Status = domain.AlertStatusInReview
	}
	a.UpdatedAt = time.Now().UTC()
	if a.RoomID != nil {
		if err := r.rooms.setModerator(*a.RoomID, responsibleID); err != nil {
			return nil, err
		}
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAlertRepo) UpdateStatusFrom(_ context.Context, id string, from, to domain.AlertStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.Status != from {
		return repository.ErrStatusConflict
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*domain.ChatRoom
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*domain.ChatRoom)}
}

func (r *fakeRoomRepo) Create(_ context.Context, room *domain.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *room
	r.rooms[room.ID] = &cp
	return nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id string) (*domain.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) setModerator(roomID string, moderatorID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	room.ModeratorID = moderatorID
	return nil
}

func newTestService(t *testing.T) (Service, *fakeAlertRepo, *fakeRoomRepo) {
	t.Helper()
	rooms := newFakeRoomRepo()
	alerts := newFakeAlertRepo(rooms)
	return NewService(alerts), alerts, rooms
}

func seedRoom(t *testing.T, rooms *fakeRoomRepo) *domain.ChatRoom {
	t.Helper()
	room := &domain.ChatRoom{ID: "room-1", BuyerID: "buyer-1", SellerID: "seller-1", CreatedAt: time.Now().UTC()}
	require.NoError(t, rooms.Create(context.Background(), room))
	return room
}

func TestCreateAlertFromMessageReporterIsCounterpart(t *testing.T) {
	svc, _, rooms := newTestService(t)
	room := seedRoom(t, rooms)
	ctx := context.Background()

	msg := &domain.Message{ID: "m1", RoomID: room.ID, SenderID: "seller-1", Content: "pay offsite"}
	alert, err := svc.CreateAlertFromMessage(ctx, room, msg, "offsite")
	require.NoError(t, err)

	assert.Equal(t, "buyer-1", alert.ReporterID)
	assert.Equal(t, "seller-1", alert.ProblematicUserID)
	assert.Equal(t, domain.AlertStatusOpen, alert.Status)
	require.NotNil(t, alert.MessageID)
	assert.Equal(t, "m1", *alert.MessageID)
	assert.Contains(t, alert.Reason, "offsite")
}

func TestCreateAlertFromMessageSystemReporter(t *testing.T) {
	svc, _, rooms := newTestService(t)
	room := seedRoom(t, rooms)
	mod := "mod-1"
	room.ModeratorID = &mod
	ctx := context.Background()

	// A moderator sender has no trading counterpart.
	msg := &domain.Message{ID: "m2", RoomID: room.ID, SenderID: "mod-1"}
	alert, err := svc.CreateAlertFromMessage(ctx, room, msg, "term")
	require.NoError(t, err)
	assert.Equal(t, domain.ReporterSystem, alert.ReporterID)
}

func TestCreateReport(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	alert, err := svc.CreateReport(ctx, domain.Identity{UserID: "buyer-1", Role: domain.RoleBuyer}, domain.ReportRequest{
		ProblematicUserID: "seller-9",
		Reason:            "asked to pay outside the platform",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", alert.ReporterID)
	assert.Equal(t, "seller-9", alert.ProblematicUserID)
	assert.Equal(t, domain.AlertStatusOpen, alert.Status)
	assert.Nil(t, alert.RoomID)
}

func TestAssignResponsibleAdvancesOpenAlert(t *testing.T) {
	svc, _, rooms := newTestService(t)
	room := seedRoom(t, rooms)
	ctx := context.Background()

	msg := &domain.Message{ID: "m1", RoomID: room.ID, SenderID: "buyer-1"}
	created, err := svc.CreateAlertFromMessage(ctx, room, msg, "term")
	require.NoError(t, err)

	mod := "mod-7"
	alert, err := svc.AssignResponsible(ctx, created.ID, &mod)
	require.NoError(t, err)

	assert.Equal(t, domain.AlertStatusInReview, alert.Status)
	require.NotNil(t, alert.ResponsibleID)
	assert.Equal(t, "mod-7", *alert.ResponsibleID)

	// The room mirrors the assignment.
	got, err := rooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ModeratorID)
	assert.Equal(t, "mod-7", *got.ModeratorID)
}

func TestAssignResponsibleOverwriteKeepsStatus(t *testing.T) {
	svc, _, rooms := newTestService(t)
	room := seedRoom(t, rooms)
	ctx := context.Background()

	msg := &domain.Message{ID: "m1", RoomID: room.ID, SenderID: "buyer-1"}
	created, err := svc.CreateAlertFromMessage(ctx, room, msg, "term")
	require.NoError(t, err)

	first := "mod-1"
	_, err = svc.AssignResponsible(ctx, created.ID, &first)
	require.NoError(t, err)

	second := "mod-2"
	alert, err := svc.AssignResponsible(ctx, created.ID, &second)
	require.NoError(t, err)

	// Reassignment is last-writer-wins and does not re-trigger the
	// open -> in_review advance.
	assert.Equal(t, domain.AlertStatusInReview, alert.Status)
	assert.Equal(t, "mod-2", *alert.ResponsibleID)

	got, _ := rooms.GetByID(ctx, room.ID)
	assert.Equal(t, "mod-2", *got.ModeratorID)
}

func TestAssignResponsibleClear(t *testing.T) {
	svc, _, rooms := newTestService(t)
	room := seedRoom(t, rooms)
	ctx := context.Background()

	msg := &domain.Message{ID: "m1", RoomID: room.ID, SenderID: "buyer-1"}
	created, err := svc.CreateAlertFromMessage(ctx, room, msg, "term")
	require.NoError(t, err)

	mod := "mod-1"
	_, err = svc.AssignResponsible(ctx, created.ID, &mod)
	require.NoError(t, err)

	alert, err := svc.AssignResponsible(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, alert.ResponsibleID)
	// Clearing does not move the status back.
	assert.Equal(t, domain.AlertStatusInReview, alert.Status)

	got, _ := rooms.GetByID(ctx, room.ID)
	assert.Nil(t, got.ModeratorID)
}

func TestAssignResponsibleConcurrentLastWriterWins(t *testing.T) {
	svc, alerts, rooms := newTestService(t)
	room := seedRoom(t, rooms)
	ctx := context.Background()

	msg := &domain.Message{ID: "m1", RoomID: room.ID, SenderID: "buyer-1"}
	created, err := svc.CreateAlertFromMessage(ctx, room, msg, "term")
	require.NoError(t, err)

	// Distinct moderators racing for the same alert: whoever wins, the
	// alert and the room must agree on the winner.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			mod := fmt.Sprintf("mod-%d", n)
			_, err := svc.AssignResponsible(ctx, created.ID, &mod)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := alerts.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResponsibleID)
	assert.Equal(t, domain.AlertStatusInReview, got.Status)

	gotRoom, err := rooms.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, gotRoom.ModeratorID)
	assert.Equal(t, *got.ResponsibleID, *gotRoom.ModeratorID)
}

func TestAssignResponsibleNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	mod := "mod-1"
	_, err := svc.AssignResponsible(context.Background(), "missing", &mod)
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReport(ctx, domain.Identity{UserID: "buyer-1"}, domain.ReportRequest{
		ProblematicUserID: "seller-1", Reason: "spam",
	})
	require.NoError(t, err)

	alert, err := svc.UpdateStatus(ctx, created.ID, domain.AlertStatusInReview)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusInReview, alert.Status)

	alert, err = svc.UpdateStatus(ctx, created.ID, domain.AlertStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusResolved, alert.Status)

	// Resolved is terminal.
	_, err = svc.UpdateStatus(ctx, created.ID, domain.AlertStatusOpen)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateReport(ctx, domain.Identity{UserID: "buyer-1"}, domain.ReportRequest{
		ProblematicUserID: "seller-1", Reason: "spam",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.ID, domain.AlertStatus("escalated"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, created.ID, domain.AlertStatusResolved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, "missing", domain.AlertStatusInReview)
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestListAlertsNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateReport(ctx, domain.Identity{UserID: "a"}, domain.ReportRequest{ProblematicUserID: "x", Reason: "r1"})
	require.NoError(t, err)
	second, err := svc.CreateReport(ctx, domain.Identity{UserID: "b"}, domain.ReportRequest{ProblematicUserID: "y", Reason: "r2"})
	require.NoError(t, err)

	list, err := svc.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
