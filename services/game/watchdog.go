package game

import (
	game_constants "Spinduel/constants/game"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"errors"
	"log"
	"time"
)

// Watchdog is the client-side turn timeout detector. Every observing process
// runs one per watched room; there is no leader election, so several
// processes may race to end the same turn. The compare-and-set inside
// EndDueToTimeout lets exactly one of them land.
//
// Polling is the enforcement mechanism, not an optimization: a deadline is
// considered enforced only because every reader re-evaluates it, never
// because some scheduled callback fired.
type Watchdog struct {
	store *store.Store
	game  *Manager
}

func NewWatchdog(s *store.Store, game *Manager) *Watchdog {
	return &Watchdog{store: s, game: game}
}

// Watch polls the room until it finishes, disappears, or ctx is cancelled.
// Blocking; run it on its own goroutine.
func (w *Watchdog) Watch(ctx context.Context, roomId string) {
	log.Printf("[WATCHDOG] Watching room %s for turn timeouts", roomId)
	ticker := time.NewTicker(game_constants.TIMEOUT_POLL_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[WATCHDOG] Stopped watching room %s", roomId)
			return
		case <-ticker.C:
			if done := w.check(ctx, roomId); done {
				return
			}
		}
	}
}

func (w *Watchdog) check(ctx context.Context, roomId string) (done bool) {
	var room redis_models.Room
	found, err := w.store.GetJSON(ctx, store.FormatRoomKey(roomId), &room)
	if err != nil {
		log.Printf("[WATCHDOG-ERROR] Error reading room %s: %v", roomId, err)
		return false
	}
	if !found || room.Status == redis_models.RoomFinished {
		return true
	}
	if room.Status != redis_models.RoomPlaying || room.Game.TurnStartTime.IsZero() {
		return false
	}

	now, err := w.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}
	if now.Sub(room.Game.TurnStartTime) <= game_constants.TURN_TIMEOUT {
		return false
	}

	current := room.Game.PlayerOrder[room.Game.CurrentTurnIndex]
	log.Printf("[WATCHDOG] Turn timeout detected in room %s for %s", roomId, current)

	_, err = w.game.EndDueToTimeout(ctx, roomId, current, game_constants.TIMEOUT_REASON_TIMEOUT)
	if err != nil {
		// Another observer got there first: both outcomes end the watch.
		if errors.Is(err, utils.ErrInvalidState) || errors.Is(err, utils.ErrVersionConflict) || errors.Is(err, utils.ErrNotFound) {
			return true
		}
		log.Printf("[WATCHDOG-ERROR] Failed to end room %s on timeout: %v", roomId, err)
		return false
	}
	return true
}
