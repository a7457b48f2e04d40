package postgres

import (
	"gorm.io/datatypes"
)

/*
 * 'GameProfile' defines the durable per-user game data: the cumulative point
 * counter and win counter incremented by AwardWin, plus lobby-facing bits.
 * It is referenced in User, WinAward and GameResult.
 */
type GameProfile struct {
	Username  string         `gorm:"primaryKey;size:50;not null"`
	Points    int            `gorm:"default:0"`
	Wins      int            `gorm:"default:0"`
	UserIcon  int            `gorm:"default:0"`
	IsInAGame bool           `gorm:"default:false"`
	UserStats datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	WinAwards []WinAward `gorm:"foreignKey:Username"`
}
