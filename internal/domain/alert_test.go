package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertStatusValid(t *testing.T) {
	assert.True(t, AlertStatusOpen.Valid())
	assert.True(t, AlertStatusInReview.Valid())
	assert.True(t, AlertStatusResolved.Valid())
	assert.True(t, AlertStatusDismissed.Valid())
	assert.False(t, AlertStatus("escalated").Valid())
	assert.False(t, AlertStatus("").Valid())
}

func TestAlertStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AlertStatus
		allowed  bool
	}{
		{AlertStatusOpen, AlertStatusInReview, true},
		{AlertStatusOpen, AlertStatusDismissed, true},
		{AlertStatusOpen, AlertStatusResolved, false},
		{AlertStatusOpen, AlertStatusOpen, false},
		{AlertStatusInReview, AlertStatusOpen, true},
		{AlertStatusInReview, AlertStatusResolved, true},
		{AlertStatusInReview, AlertStatusDismissed, true},
		{AlertStatusResolved, AlertStatusOpen, false},
		{AlertStatusResolved, AlertStatusInReview, false},
		{AlertStatusDismissed, AlertStatusOpen, false},
		{AlertStatusDismissed, AlertStatusResolved, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRoomMembership(t *testing.T) {
	mod := "mod-1"
	room := &ChatRoom{ID: "r1", BuyerID: "buyer-1", SellerID: "seller-1"}

	assert.True(t, room.IsMember("buyer-1"))
	assert.True(t, room.IsMember("seller-1"))
	assert.False(t, room.IsMember("mod-1"))
	assert.Equal(t, []string{"buyer-1", "seller-1"}, room.ParticipantIDs())

	room.ModeratorID = &mod
	assert.True(t, room.IsMember("mod-1"))
	assert.Equal(t, []string{"buyer-1", "seller-1", "mod-1"}, room.ParticipantIDs())
}
