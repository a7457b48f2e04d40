package invites

import (
	redis_models "Spinduel/models/redis"
	"Spinduel/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpiredBoundary(t *testing.T) {
	deadline := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(deadline, deadline.Add(-time.Second)))
	// Exactly at the deadline the invite is still acceptable
	assert.False(t, IsExpired(deadline, deadline))
	assert.True(t, IsExpired(deadline, deadline.Add(time.Millisecond)))
}

func TestPendingInvitesFiltersAndSorts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	list := []redis_models.Invite{
		{RoomId: "old", Status: redis_models.InvitePending,
			IssuedAt: now.Add(-40 * time.Second), ExpiresAt: now.Add(20 * time.Second)},
		{RoomId: "stale", Status: redis_models.InvitePending,
			IssuedAt: now.Add(-2 * time.Minute), ExpiresAt: now.Add(-time.Minute)},
		{RoomId: "declined", Status: redis_models.InviteDeclined,
			IssuedAt: now.Add(-10 * time.Second), ExpiresAt: now.Add(50 * time.Second)},
		{RoomId: "fresh", Status: redis_models.InvitePending,
			IssuedAt: now.Add(-5 * time.Second), ExpiresAt: now.Add(55 * time.Second)},
	}

	pending, expired := PendingInvites(list, now)

	if assert.Len(t, pending, 2) {
		// Newest first
		assert.Equal(t, "fresh", pending[0].RoomId)
		assert.Equal(t, "old", pending[1].RoomId)
	}
	if assert.Len(t, expired, 1) {
		assert.Equal(t, "stale", expired[0].RoomId)
	}
}

func TestPendingInvitesEmptyList(t *testing.T) {
	pending, expired := PendingInvites(nil, time.Now())
	assert.Empty(t, pending)
	assert.Empty(t, expired)
}

func invitedRoom(inviteStatus redis_models.InviteStatus, expiresAt time.Time) *redis_models.Room {
	return &redis_models.Room{
		Id:             "room-1",
		HostUsername:   "alice",
		Status:         redis_models.RoomWaiting,
		MaxPlayers:     2,
		CurrentPlayers: 1,
		Players: map[string]redis_models.PlayerInfo{
			"alice": {Username: "alice"},
		},
		Invites: map[string]redis_models.Invite{
			"bob": {
				RoomId:       "room-1",
				FromUsername: "alice",
				ToUsername:   "bob",
				Status:       inviteStatus,
				IssuedAt:     expiresAt.Add(-60 * time.Second),
				ExpiresAt:    expiresAt,
			},
		},
		Game: redis_models.GameState{
			TotalRounds: 3,
			PlayerOrder: []string{"alice"},
			Scores:      map[string]int{"alice": 0},
		},
		Version: 2,
	}
}

func TestApplyAcceptFreshInviteJoins(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	room := invitedRoom(redis_models.InvitePending, now.Add(30*time.Second))

	expired, err := ApplyAccept(room, redis_models.PlayerInfo{Username: "bob"}, now)
	assert.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, 2, room.CurrentPlayers)
	assert.Equal(t, []string{"alice", "bob"}, room.Game.PlayerOrder)
	assert.Equal(t, redis_models.InviteAccepted, room.Invites["bob"].Status)
}

func TestApplyAcceptPastDeadlineReapsInvite(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	room := invitedRoom(redis_models.InvitePending, now.Add(-time.Second))

	expired, err := ApplyAccept(room, redis_models.PlayerInfo{Username: "bob"}, now)
	assert.NoError(t, err)
	assert.True(t, expired)
	// Reaped from the room, and bob did not get in
	assert.NotContains(t, room.Invites, "bob")
	assert.Equal(t, 1, room.CurrentPlayers)
	assert.NotContains(t, room.Players, "bob")
	// The reap itself is a write
	assert.Equal(t, int64(3), room.Version)
}

func TestApplyAcceptTerminalInvite(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, status := range []redis_models.InviteStatus{
		redis_models.InviteAccepted, redis_models.InviteDeclined, redis_models.InviteExpired,
	} {
		room := invitedRoom(status, now.Add(30*time.Second))
		_, err := ApplyAccept(room, redis_models.PlayerInfo{Username: "bob"}, now)
		assert.ErrorIs(t, err, utils.ErrAlreadyProcessed)
		assert.Equal(t, 1, room.CurrentPlayers)
	}
}

func TestApplyAcceptWithoutInvite(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	room := invitedRoom(redis_models.InvitePending, now.Add(30*time.Second))

	_, err := ApplyAccept(room, redis_models.PlayerInfo{Username: "mallory"}, now)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestApplyAcceptFullRoom(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	room := invitedRoom(redis_models.InvitePending, now.Add(30*time.Second))
	room.Players["carol"] = redis_models.PlayerInfo{Username: "carol"}
	room.Game.PlayerOrder = append(room.Game.PlayerOrder, "carol")
	room.Game.Scores["carol"] = 0
	room.CurrentPlayers = 2

	_, err := ApplyAccept(room, redis_models.PlayerInfo{Username: "bob"}, now)
	assert.ErrorIs(t, err, utils.ErrRoomFull)
	// The pending invite survives a full-room rejection
	assert.Equal(t, redis_models.InvitePending, room.Invites["bob"].Status)
}
