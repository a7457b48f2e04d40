package game_constants

import "time"

const MaxPlayers = 2
const TotalRounds = 3
const MinWheelItems = 6 // NOTE: frontend selects the wheel, this core never re-validates the count

// Timing constants
const (
	TURN_TIMEOUT          = 60 * time.Second
	INVITE_TTL            = 60 * time.Second
	TIMEOUT_POLL_INTERVAL = 5 * time.Second
)

// Reward granted to the winner's durable profile
const WIN_POINTS = 100

// Reasons attached to a forced game end
const TIMEOUT_REASON_TIMEOUT = "timeout"
const TIMEOUT_REASON_LEFT = "left"
