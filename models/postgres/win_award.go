package postgres

import (
	"time"
)

/*
 * 'WinAward' is the idempotency ledger behind AwardWin. The composite primary
 * key (GameID, Username) means a reward can land at most once per player per
 * game, no matter how many observers report the same finish.
 */
type WinAward struct {
	GameID    string    `gorm:"primaryKey;size:50;not null"`
	Username  string    `gorm:"primaryKey;size:50;not null"`
	Points    int       `gorm:"not null"`
	AwardedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	GameProfile GameProfile `gorm:"foreignKey:Username;constraint:OnDelete:CASCADE"`
}
