package rooms

import (
	redis_models "Spinduel/models/redis"
	"Spinduel/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitingRoom() *redis_models.Room {
	return &redis_models.Room{
		Id:             "room-1",
		HostUsername:   "alice",
		Status:         redis_models.RoomWaiting,
		MaxPlayers:     2,
		CurrentPlayers: 1,
		Players: map[string]redis_models.PlayerInfo{
			"alice": {Username: "alice"},
		},
		Invites: map[string]redis_models.Invite{},
		Game: redis_models.GameState{
			TotalRounds: 3,
			PlayerOrder: []string{"alice"},
			Scores:      map[string]int{"alice": 0},
		},
		Version: 1,
	}
}

func TestApplyJoinAddsPlayer(t *testing.T) {
	room := waitingRoom()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := ApplyJoin(room, redis_models.PlayerInfo{Username: "bob", Icon: 2}, now)
	assert.NoError(t, err)
	assert.Equal(t, 2, room.CurrentPlayers)
	assert.Equal(t, []string{"alice", "bob"}, room.Game.PlayerOrder)
	assert.Equal(t, 0, room.Game.Scores["bob"])
	assert.Equal(t, now, room.Players["bob"].JoinedAt)
	assert.Equal(t, int64(2), room.Version)
}

func TestApplyJoinDuplicateIsAlreadyProcessed(t *testing.T) {
	room := waitingRoom()

	err := ApplyJoin(room, redis_models.PlayerInfo{Username: "alice"}, time.Now())
	assert.ErrorIs(t, err, utils.ErrAlreadyProcessed)
	assert.Equal(t, 1, room.CurrentPlayers)
}

func TestApplyJoinFullRoom(t *testing.T) {
	room := waitingRoom()
	assert.NoError(t, ApplyJoin(room, redis_models.PlayerInfo{Username: "bob"}, time.Now()))

	err := ApplyJoin(room, redis_models.PlayerInfo{Username: "carol"}, time.Now())
	assert.ErrorIs(t, err, utils.ErrRoomFull)
	assert.Equal(t, 2, room.CurrentPlayers)
}

func TestApplyJoinRejectedOncePlaying(t *testing.T) {
	room := waitingRoom()
	room.Status = redis_models.RoomPlaying

	err := ApplyJoin(room, redis_models.PlayerInfo{Username: "bob"}, time.Now())
	assert.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestApplyLeaveWhileWaitingRemovesPlayer(t *testing.T) {
	room := waitingRoom()
	assert.NoError(t, ApplyJoin(room, redis_models.PlayerInfo{Username: "bob"}, time.Now()))

	err := ApplyLeave(room, "bob")
	assert.NoError(t, err)
	assert.Equal(t, 1, room.CurrentPlayers)
	assert.NotContains(t, room.Players, "bob")
	assert.NotContains(t, room.Game.Scores, "bob")
	assert.Equal(t, []string{"alice"}, room.Game.PlayerOrder)
}

func TestApplyLeaveMidGameKeepsStandings(t *testing.T) {
	room := waitingRoom()
	assert.NoError(t, ApplyJoin(room, redis_models.PlayerInfo{Username: "bob"}, time.Now()))
	assert.NoError(t, ApplyStart(room, "alice", time.Now()))
	room.Game.Scores["bob"] = 30

	err := ApplyLeave(room, "bob")
	assert.NoError(t, err)
	assert.Equal(t, 1, room.CurrentPlayers)
	assert.Contains(t, room.Players, "bob")
	assert.Equal(t, 30, room.Game.Scores["bob"])
	assert.Equal(t, []string{"alice", "bob"}, room.Game.PlayerOrder)
}

func TestApplyLeaveNonMember(t *testing.T) {
	room := waitingRoom()
	assert.ErrorIs(t, ApplyLeave(room, "mallory"), utils.ErrNotFound)
}

func TestApplyStart(t *testing.T) {
	room := waitingRoom()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// One player is not enough
	assert.ErrorIs(t, ApplyStart(room, "alice", now), utils.ErrInvalidState)

	assert.NoError(t, ApplyJoin(room, redis_models.PlayerInfo{Username: "bob"}, now))

	// Non-members cannot start someone else's room
	assert.ErrorIs(t, ApplyStart(room, "mallory", now), utils.ErrUnauthorized)

	// Any member may start; the second joiner does right after accepting
	err := ApplyStart(room, "bob", now)
	assert.NoError(t, err)
	assert.Equal(t, redis_models.RoomPlaying, room.Status)
	assert.Equal(t, 1, room.Game.CurrentRound)
	assert.Equal(t, 0, room.Game.CurrentTurnIndex)
	assert.Equal(t, now, room.Game.TurnStartTime)
	assert.Empty(t, room.Game.SpinHistory)

	// Starting twice must fail
	assert.ErrorIs(t, ApplyStart(room, "alice", now), utils.ErrInvalidState)
}
