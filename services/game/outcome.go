package game

import (
	game_constants "Spinduel/constants/game"
	"Spinduel/models/postgres"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"gorm.io/gorm"
)

type Standing struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// ComputeLeaderboard sorts the room's players by score descending. Ties keep
// turn order so the output is stable across observers. Purely derived, no
// mutation.
func ComputeLeaderboard(room *redis_models.Room) []Standing {
	standings := make([]Standing, 0, len(room.Game.PlayerOrder))
	for _, name := range room.Game.PlayerOrder {
		standings = append(standings, Standing{Username: name, Score: room.Game.Scores[name]})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}

// Resolver applies durable rewards for a finished game.
type Resolver struct {
	db    *gorm.DB
	store *store.Store
}

func NewResolver(db *gorm.DB, s *store.Store) *Resolver {
	return &Resolver{db: db, store: s}
}

// AwardWin credits the fixed win reward to the player's durable profile at
// most once per (game, player): the win ledger's composite key absorbs
// duplicate reports from independent observers, so callers may fire this on
// every finish event they see. Returns the updated totals.
func (r *Resolver) AwardWin(ctx context.Context, gameId, username string) (points int, wins int, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing postgres.WinAward
		err := tx.Where("game_id = ? AND username = ?", gameId, username).First(&existing).Error
		if err == nil {
			return utils.ErrAlreadyProcessed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error checking win ledger: %v", err)
		}

		award := postgres.WinAward{GameID: gameId, Username: username, Points: game_constants.WIN_POINTS}
		if err := tx.Create(&award).Error; err != nil {
			return fmt.Errorf("error writing win ledger: %v", err)
		}

		err = tx.Model(&postgres.GameProfile{}).
			Where("username = ?", username).
			Updates(map[string]interface{}{
				"points": gorm.Expr("points + ?", game_constants.WIN_POINTS),
				"wins":   gorm.Expr("wins + 1"),
			}).Error
		if err != nil {
			return fmt.Errorf("error updating profile counters: %v", err)
		}

		var profile postgres.GameProfile
		if err := tx.Where("username = ?", username).First(&profile).Error; err != nil {
			return fmt.Errorf("error reading updated profile: %v", err)
		}
		points = profile.Points
		wins = profile.Wins
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	// Live counter for leaderboard screens; the Postgres row is the truth.
	if _, incErr := r.store.Increment(ctx, store.FormatPointsKey(username), game_constants.WIN_POINTS); incErr != nil {
		log.Printf("[AWARD-WARN] Live point counter not updated for %s: %v", username, incErr)
	}

	log.Printf("[AWARD] %s awarded %d points for game %s (total %d, wins %d)",
		username, game_constants.WIN_POINTS, gameId, points, wins)
	return points, wins, nil
}
