package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'GameResult' is the durable snapshot of a finished room, written by the
 * SyncManager when a game reaches the finished status. The live Room document
 * in Redis eventually expires; this row is what history screens read.
 */
type GameResult struct {
	RoomID         string         `gorm:"primaryKey;size:50;not null"`
	HostUsername   string         `gorm:"size:50;not null"`
	WinnerUsername string         `gorm:"size:50"` // empty on a tie
	Scores         datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	TimeoutReason  string         `gorm:"size:20"`
	EndedAt        time.Time
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
