package sync

import (
	"Spinduel/models/postgres"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SyncManager copies the durable side of game state from the record store to
// PostgreSQL. The live Room document eventually expires; the rows written
// here are what history screens read afterwards.
type SyncManager struct {
	store *store.Store
	db    *gorm.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(s *store.Store, db *gorm.DB) *SyncManager {
	return &SyncManager{store: s, db: db}
}

// SyncFinishedRoom snapshots a finished room into the game_results table and
// clears the players' in-game flags. Idempotent: a second observer syncing
// the same finish leaves the existing row untouched.
func (sm *SyncManager) SyncFinishedRoom(ctx context.Context, roomId string) error {
	var room redis_models.Room
	found, err := sm.store.GetJSON(ctx, store.FormatRoomKey(roomId), &room)
	if err != nil {
		return fmt.Errorf("error getting room state from store: %v", err)
	}
	if !found {
		return utils.ErrNotFound
	}
	if room.Status != redis_models.RoomFinished {
		return utils.ErrInvalidState
	}

	scores, err := json.Marshal(room.Game.Scores)
	if err != nil {
		return fmt.Errorf("error marshaling final scores: %v", err)
	}

	result := postgres.GameResult{
		RoomID:        room.Id,
		HostUsername:  room.HostUsername,
		Scores:        scores,
		TimeoutReason: room.Game.TimeoutReason,
		EndedAt:       room.Game.EndedAt,
	}
	if room.Game.Winner != nil {
		result.WinnerUsername = room.Game.Winner.Username
	}

	err = sm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing postgres.GameResult
		err := tx.Where("room_id = ?", room.Id).First(&existing).Error
		if err == nil {
			return nil // already synced by another observer
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&result).Error; err != nil {
			return fmt.Errorf("error writing game result: %v", err)
		}

		usernames := make([]string, 0, len(room.Players))
		for name := range room.Players {
			usernames = append(usernames, name)
		}
		if len(usernames) > 0 {
			err = tx.Model(&postgres.GameProfile{}).
				Where("username IN ?", usernames).
				Update("is_in_a_game", false).Error
			if err != nil {
				return fmt.Errorf("error clearing in-game flags: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[SYNC] Finished room %s persisted to PostgreSQL", roomId)
	return nil
}

// SyncGameStarted flips the durable in-game flag for every participant when
// a room begins playing, so invite checks see them as busy.
func (sm *SyncManager) SyncGameStarted(ctx context.Context, room *redis_models.Room) error {
	usernames := make([]string, 0, len(room.Players))
	for name := range room.Players {
		usernames = append(usernames, name)
	}
	err := sm.db.WithContext(ctx).Model(&postgres.GameProfile{}).
		Where("username IN ?", usernames).
		Update("is_in_a_game", true).Error
	if err != nil {
		return fmt.Errorf("error setting in-game flags: %v", err)
	}
	return nil
}
