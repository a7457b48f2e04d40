package game

import (
	redis_models "Spinduel/models/redis"
	"time"
)

// Session view projector: pure read-side queries over a Room snapshot for
// the UI layer. No side effects, safe to call on every refresh.

// IsCurrentTurn reports whether it is username's turn to spin.
func IsCurrentTurn(room *redis_models.Room, username string) bool {
	g := &room.Game
	if room.Status != redis_models.RoomPlaying || len(g.PlayerOrder) == 0 {
		return false
	}
	if g.CurrentTurnIndex < 0 || g.CurrentTurnIndex >= len(g.PlayerOrder) {
		return false
	}
	return g.PlayerOrder[g.CurrentTurnIndex] == username
}

// CurrentTurnPlayerName returns the display name of the player whose turn it
// is, or empty when no turn is running.
func CurrentTurnPlayerName(room *redis_models.Room) string {
	g := &room.Game
	if room.Status != redis_models.RoomPlaying || len(g.PlayerOrder) == 0 {
		return ""
	}
	if g.CurrentTurnIndex < 0 || g.CurrentTurnIndex >= len(g.PlayerOrder) {
		return ""
	}
	username := g.PlayerOrder[g.CurrentTurnIndex]
	if p, ok := room.Players[username]; ok && p.Username != "" {
		return p.Username
	}
	return username
}

// Leaderboard is the UI-facing alias of ComputeLeaderboard.
func Leaderboard(room *redis_models.Room) []Standing {
	return ComputeLeaderboard(room)
}

// RemainingInviteTime returns how long the invite stays acceptable, floored
// at zero once the deadline has passed.
func RemainingInviteTime(invite *redis_models.Invite, now time.Time) time.Duration {
	remaining := invite.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
