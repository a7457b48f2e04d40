package game

import (
	redis_models "Spinduel/models/redis"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsCurrentTurn(t *testing.T) {
	room := playingRoom(3)

	assert.True(t, IsCurrentTurn(room, "alice"))
	assert.False(t, IsCurrentTurn(room, "bob"))

	room.Game.CurrentTurnIndex = 1
	assert.True(t, IsCurrentTurn(room, "bob"))

	room.Status = redis_models.RoomWaiting
	assert.False(t, IsCurrentTurn(room, "bob"))
}

func TestCurrentTurnPlayerName(t *testing.T) {
	room := playingRoom(3)
	assert.Equal(t, "alice", CurrentTurnPlayerName(room))

	room.Status = redis_models.RoomFinished
	assert.Equal(t, "", CurrentTurnPlayerName(room))
}

func TestComputeLeaderboardOrdersByScoreDesc(t *testing.T) {
	room := playingRoom(3)
	room.Game.Scores["alice"] = 15
	room.Game.Scores["bob"] = 40

	standings := ComputeLeaderboard(room)
	assert.Equal(t, []Standing{
		{Username: "bob", Score: 40},
		{Username: "alice", Score: 15},
	}, standings)
}

func TestComputeLeaderboardTiesKeepTurnOrder(t *testing.T) {
	room := playingRoom(3)
	room.Game.Scores["alice"] = 25
	room.Game.Scores["bob"] = 25

	standings := ComputeLeaderboard(room)
	assert.Equal(t, "alice", standings[0].Username)
	assert.Equal(t, "bob", standings[1].Username)
}

func TestRemainingInviteTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	invite := &redis_models.Invite{ExpiresAt: now.Add(45 * time.Second)}

	assert.Equal(t, 45*time.Second, RemainingInviteTime(invite, now))
	assert.Equal(t, time.Duration(0), RemainingInviteTime(invite, now.Add(time.Minute)))
}
