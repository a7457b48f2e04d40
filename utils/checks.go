package utils

import (
	"Spinduel/models/postgres"

	"gorm.io/gorm"
)

// UserByEmail resolves the account behind a JWT email claim.
func UserByEmail(db *gorm.DB, email string) (*postgres.User, error) {
	var user postgres.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Returns the icon of the user
func UserIcon(db *gorm.DB, username string) int {
	var icon int
	err := db.Model(&postgres.GameProfile{}).
		Select("user_icon").
		Where("username = ?", username).
		Find(&icon).Error
	if err != nil {
		return 1
	}

	return icon
}

// IsUserPlaying checks the durable profile flag used to reject invites to
// users who are already in a running game.
func IsUserPlaying(db *gorm.DB, username string) (bool, error) {
	var playing bool
	err := db.Model(&postgres.GameProfile{}).
		Select("is_in_a_game").
		Where("username = ?", username).
		Find(&playing).Error
	if err != nil {
		return false, err
	}
	return playing, nil
}
