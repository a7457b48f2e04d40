package game

import (
	redis_models "Spinduel/models/redis"
	"Spinduel/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func playingRoom(totalRounds int) *redis_models.Room {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &redis_models.Room{
		Id:             "room-1",
		HostUsername:   "alice",
		Status:         redis_models.RoomPlaying,
		MaxPlayers:     2,
		CurrentPlayers: 2,
		Players: map[string]redis_models.PlayerInfo{
			"alice": {Username: "alice"},
			"bob":   {Username: "bob"},
		},
		Game: redis_models.GameState{
			CurrentRound:     1,
			TotalRounds:      totalRounds,
			CurrentTurnIndex: 0,
			PlayerOrder:      []string{"alice", "bob"},
			Scores:           map[string]int{"alice": 0, "bob": 0},
			SpinHistory:      []redis_models.SpinRecord{},
			TurnStartTime:    start,
		},
		Version: 3,
	}
}

func TestApplySpinAdvancesTurnAndRound(t *testing.T) {
	room := playingRoom(3)
	now := room.Game.TurnStartTime.Add(5 * time.Second)

	err := ApplySpin(room, "alice", redis_models.WheelItem{Name: "Gold", Value: 40}, now)
	assert.NoError(t, err)
	assert.Equal(t, 40, room.Game.Scores["alice"])
	assert.Equal(t, 40, room.Players["alice"].Score)
	assert.Equal(t, 1, room.Game.CurrentTurnIndex)
	assert.Equal(t, 1, room.Game.CurrentRound)
	assert.Equal(t, now, room.Game.TurnStartTime)

	// Second spin wraps the order and bumps the round
	err = ApplySpin(room, "bob", redis_models.WheelItem{Name: "Silver", Value: 10}, now.Add(time.Second))
	assert.NoError(t, err)
	assert.Equal(t, 0, room.Game.CurrentTurnIndex)
	assert.Equal(t, 2, room.Game.CurrentRound)
	assert.Equal(t, redis_models.RoomPlaying, room.Status)
}

func TestApplySpinRejectsOutOfTurn(t *testing.T) {
	room := playingRoom(3)
	now := room.Game.TurnStartTime.Add(time.Second)

	err := ApplySpin(room, "bob", redis_models.WheelItem{Name: "Gold", Value: 40}, now)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
	assert.Empty(t, room.Game.SpinHistory)
	assert.Equal(t, 0, room.Game.Scores["bob"])
}

func TestApplySpinRejectsWhenNotPlaying(t *testing.T) {
	room := playingRoom(3)
	room.Status = redis_models.RoomFinished

	err := ApplySpin(room, "alice", redis_models.WheelItem{Name: "Gold", Value: 40}, time.Now())
	assert.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestApplySpinFinishesAfterLastRound(t *testing.T) {
	room := playingRoom(1)
	now := room.Game.TurnStartTime

	assert.NoError(t, ApplySpin(room, "alice", redis_models.WheelItem{Name: "Bronze", Value: 5}, now.Add(time.Second)))
	assert.NoError(t, ApplySpin(room, "bob", redis_models.WheelItem{Name: "Gold", Value: 10}, now.Add(2*time.Second)))

	assert.Equal(t, redis_models.RoomFinished, room.Status)
	if assert.NotNil(t, room.Game.Winner) {
		assert.Equal(t, "bob", room.Game.Winner.Username)
		assert.Equal(t, 10, room.Game.Winner.Score)
	}
	assert.True(t, room.Game.TurnStartTime.IsZero())
	assert.Equal(t, now.Add(2*time.Second), room.Game.EndedAt)
}

func TestApplySpinTiedFinalScoresYieldNoWinner(t *testing.T) {
	room := playingRoom(1)
	now := room.Game.TurnStartTime

	assert.NoError(t, ApplySpin(room, "alice", redis_models.WheelItem{Name: "Gold", Value: 25}, now))
	assert.NoError(t, ApplySpin(room, "bob", redis_models.WheelItem{Name: "Gold", Value: 25}, now))

	assert.Equal(t, redis_models.RoomFinished, room.Status)
	assert.Nil(t, room.Game.Winner)
}

// Total of all scores must equal the total of all recorded spin values, no
// matter how the game went.
func TestScoreConservation(t *testing.T) {
	room := playingRoom(3)
	now := room.Game.TurnStartTime
	spins := []struct {
		user  string
		value int
	}{
		{"alice", 10}, {"bob", 0}, {"alice", 25}, {"bob", 40}, {"alice", 5}, {"bob", 10},
	}

	recorded := 0
	for i, s := range spins {
		err := ApplySpin(room, s.user, redis_models.WheelItem{Name: "item", Value: s.value}, now.Add(time.Duration(i)*time.Second))
		assert.NoError(t, err)
		recorded += s.value
	}

	total := 0
	for _, score := range room.Game.Scores {
		total += score
	}
	assert.Equal(t, recorded, total)
	assert.Len(t, room.Game.SpinHistory, len(spins))
	assert.Equal(t, redis_models.RoomFinished, room.Status)
}

// With two players and three rounds the game holds exactly six spins; a
// seventh attempt must bounce off the finished state.
func TestRoundBoundCapsSpinCount(t *testing.T) {
	room := playingRoom(3)
	now := room.Game.TurnStartTime

	users := []string{"alice", "bob"}
	for i := 0; i < 6; i++ {
		err := ApplySpin(room, users[i%2], redis_models.WheelItem{Name: "item", Value: 1}, now)
		assert.NoError(t, err)
	}
	err := ApplySpin(room, "alice", redis_models.WheelItem{Name: "item", Value: 1}, now)
	assert.ErrorIs(t, err, utils.ErrInvalidState)
	assert.Len(t, room.Game.SpinHistory, 6)
}

func TestApplyTimeoutEndsWholeGame(t *testing.T) {
	room := playingRoom(3)
	now := room.Game.TurnStartTime
	assert.NoError(t, ApplySpin(room, "alice", redis_models.WheelItem{Name: "Gold", Value: 40}, now))

	// Bob stalls past the deadline; alice reports it
	stalledAt := room.Game.TurnStartTime.Add(60*time.Second + time.Millisecond)
	err := ApplyTimeout(room, "bob", "timeout", stalledAt)
	assert.NoError(t, err)

	assert.Equal(t, redis_models.RoomFinished, room.Status)
	assert.Equal(t, "timeout", room.Game.TimeoutReason)
	if assert.NotNil(t, room.Game.Winner) {
		assert.Equal(t, "alice", room.Game.Winner.Username)
	}
	assert.True(t, room.Game.TurnStartTime.IsZero())

	last := room.Game.SpinHistory[len(room.Game.SpinHistory)-1]
	assert.Equal(t, "bob", last.Username)
	assert.Equal(t, 0, last.ItemValue)
	assert.Equal(t, "timeout", last.Reason)
}

func TestApplyTimeoutZeroZeroHasNoWinner(t *testing.T) {
	room := playingRoom(3)

	err := ApplyTimeout(room, "alice", "timeout", room.Game.TurnStartTime.Add(2*time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, redis_models.RoomFinished, room.Status)
	assert.Nil(t, room.Game.Winner)
}

func TestApplyTimeoutOnFinishedRoomFails(t *testing.T) {
	room := playingRoom(3)
	room.Status = redis_models.RoomFinished

	err := ApplyTimeout(room, "alice", "timeout", time.Now())
	assert.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestApplyTimeoutUnknownUserFails(t *testing.T) {
	room := playingRoom(3)

	err := ApplyTimeout(room, "mallory", "timeout", time.Now())
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestApplyTimeoutLeaveReasonPreservesHistory(t *testing.T) {
	room := playingRoom(3)
	now := room.Game.TurnStartTime
	assert.NoError(t, ApplySpin(room, "alice", redis_models.WheelItem{Name: "Gold", Value: 40}, now))

	err := ApplyTimeout(room, "bob", "left", now.Add(time.Second))
	assert.NoError(t, err)
	assert.Equal(t, "left", room.Game.TimeoutReason)
	assert.Len(t, room.Game.SpinHistory, 2)
	assert.Equal(t, 40, room.Game.Scores["alice"])
}
