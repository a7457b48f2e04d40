package game

import (
	redis_models "Spinduel/models/redis"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"log"
	"time"
)

// Syncer persists the durable side of a finished game. Wired to the
// SyncManager in production, nil-able in tests.
type Syncer interface {
	SyncFinishedRoom(ctx context.Context, roomId string) error
}

// Manager is the turn state machine. Turn ownership and round advancement
// are enforced inside the same compare-and-set cycle that records the spin,
// so a stale snapshot can never double-record a turn. A wedged turn is only
// ever resolved by timeout forfeiture, which any observing client may apply.
type Manager struct {
	store  *store.Store
	syncer Syncer
}

func NewManager(s *store.Store, syncer Syncer) *Manager {
	return &Manager{store: s, syncer: syncer}
}

// RecordTurnResult records the outcome of the calling player's spin and
// advances the turn, the round, or the whole game.
func (m *Manager) RecordTurnResult(ctx context.Context, roomId, username string, item redis_models.WheelItem) (*redis_models.Room, error) {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		return ApplySpin(&room, username, item, now)
	})
	if err != nil {
		log.Printf("[TURN-ERROR] Spin by %s rejected in room %s: %v", username, roomId, err)
		return nil, err
	}

	log.Printf("[TURN] %s spun %s (%d) in room %s, round %d",
		username, item.Name, item.Value, roomId, room.Game.CurrentRound)

	if room.Status == redis_models.RoomFinished {
		m.afterFinish(ctx, &room)
	}
	return &room, nil
}

// EndDueToTimeout forfeits the whole game because timedOutUser failed to act
// in time (or walked out mid-game). Any observing client may call this, not
// just the timed-out player; the racers that lose the compare-and-set see an
// invalid-state failure and treat it as already done.
func (m *Manager) EndDueToTimeout(ctx context.Context, roomId, timedOutUser, reason string) (*redis_models.Room, error) {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		return ApplyTimeout(&room, timedOutUser, reason, now)
	})
	if err != nil {
		log.Printf("[TIMEOUT-END-ERROR] Room %s not ended for %s (%s): %v", roomId, timedOutUser, reason, err)
		return nil, err
	}

	log.Printf("[TIMEOUT-END] Room %s ended, %s forfeited (%s)", roomId, timedOutUser, reason)
	m.afterFinish(ctx, &room)
	return &room, nil
}

// afterFinish pushes the durable consequences of a finished game. Best
// effort: a failure here never unwinds the recorded finish.
func (m *Manager) afterFinish(ctx context.Context, room *redis_models.Room) {
	if m.syncer == nil {
		return
	}
	if err := m.syncer.SyncFinishedRoom(ctx, room.Id); err != nil {
		log.Printf("[GAME-END-ERROR] Failed to sync finished room %s: %v", room.Id, err)
	}
}

// ApplySpin applies one spin result to a room snapshot.
func ApplySpin(room *redis_models.Room, username string, item redis_models.WheelItem, now time.Time) error {
	g := &room.Game
	if room.Status != redis_models.RoomPlaying {
		return utils.ErrInvalidState
	}
	if len(g.PlayerOrder) == 0 || g.PlayerOrder[g.CurrentTurnIndex] != username {
		return utils.ErrUnauthorized
	}

	g.SpinHistory = append(g.SpinHistory, redis_models.SpinRecord{
		Username:  username,
		Round:     g.CurrentRound,
		ItemName:  item.Name,
		ItemValue: item.Value,
		Timestamp: now,
	})
	g.Scores[username] += item.Value
	if p, ok := room.Players[username]; ok {
		p.Score = g.Scores[username]
		room.Players[username] = p
	}
	g.IsSpinning = false

	nextIndex := (g.CurrentTurnIndex + 1) % len(g.PlayerOrder)
	nextRound := g.CurrentRound
	if nextIndex == 0 {
		nextRound++
	}

	if nextRound > g.TotalRounds {
		room.Status = redis_models.RoomFinished
		g.Winner = resolveWinner(g, false)
		g.EndedAt = now
		g.TurnStartTime = time.Time{}
	} else {
		g.CurrentTurnIndex = nextIndex
		g.CurrentRound = nextRound
		g.TurnStartTime = now
	}
	room.Version++
	return nil
}

// ApplyTimeout applies a forced end to a room snapshot. This ends the entire
// game, not just the current turn.
func ApplyTimeout(room *redis_models.Room, timedOutUser, reason string, now time.Time) error {
	g := &room.Game
	if room.Status != redis_models.RoomPlaying {
		return utils.ErrInvalidState
	}
	if _, ok := g.Scores[timedOutUser]; !ok {
		return utils.ErrNotFound
	}

	g.SpinHistory = append(g.SpinHistory, redis_models.SpinRecord{
		Username:  timedOutUser,
		Round:     g.CurrentRound,
		ItemValue: 0,
		Timestamp: now,
		Reason:    reason,
	})

	room.Status = redis_models.RoomFinished
	g.Winner = resolveWinner(g, true)
	g.TimeoutReason = reason
	g.TurnStartTime = time.Time{}
	g.EndedAt = now
	g.IsSpinning = false
	room.Version++
	return nil
}

// resolveWinner picks the player with the strictly maximum score, or nil when
// there is no distinct leader. With requireNonZero (the forfeiture path) a
// 0-0 game also yields no winner.
func resolveWinner(g *redis_models.GameState, requireNonZero bool) *redis_models.Winner {
	best := -1
	count := 0
	var winner string
	for _, name := range g.PlayerOrder {
		score := g.Scores[name]
		if score > best {
			best = score
			winner = name
			count = 1
		} else if score == best {
			count++
		}
	}
	if count != 1 {
		return nil
	}
	if requireNonZero && best == 0 {
		return nil
	}
	return &redis_models.Winner{Username: winner, Score: best}
}
