package redis

import "time"

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// WheelItem is one slice of the wheel. The item list is fixed when the room
// is created and never changes afterwards.
type WheelItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PlayerInfo is the per-player entry inside a Room. Score is a denormalized
// copy of GameState.Scores[username] so the lobby screen can render without
// digging into the game state.
type PlayerInfo struct {
	Username string    `json:"username"`
	Icon     int       `json:"icon"`
	JoinedAt time.Time `json:"joined_at"`
	Score    int       `json:"score"`
}

// SpinRecord is an immutable log entry of one completed turn. Reason is only
// set on the zero-value record appended when a game is ended by force.
type SpinRecord struct {
	Username  string    `json:"username"`
	Round     int       `json:"round"`
	ItemName  string    `json:"item_name"`
	ItemValue int       `json:"item_value"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

type Winner struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// GameState is embedded in the Room document.
//
// Invariants: Scores keys match the PlayerOrder set, CurrentTurnIndex indexes
// into PlayerOrder, SpinHistory is append-only (one entry per completed turn,
// never truncated or reordered).
type GameState struct {
	CurrentRound     int            `json:"current_round"` // 1-based
	TotalRounds      int            `json:"total_rounds"`
	CurrentTurnIndex int            `json:"current_turn_index"`
	PlayerOrder      []string       `json:"player_order"`
	Scores           map[string]int `json:"scores"`
	SpinHistory      []SpinRecord   `json:"spin_history"`
	TurnStartTime    time.Time      `json:"turn_start_time"` // zero while no turn is running
	IsSpinning       bool           `json:"is_spinning"`
	Winner           *Winner        `json:"winner"`
	TimeoutReason    string         `json:"timeout_reason,omitempty"`
	EndedAt          time.Time      `json:"ended_at,omitempty"`
}

// Room is the single shared mutable record for one game session. Every client
// process reads and writes it through the record store; there is no single
// writer. Version backs the compare-and-set update path: it is bumped on
// every save and a write only lands if the version it read is still current.
//
// Status only moves forward (waiting -> playing -> finished). Once the game
// has begun, Players entries are retained even if a participant leaves, so
// history display survives departure.
type Room struct {
	Id             string                `json:"id"`
	HostUsername   string                `json:"host_username"`
	Status         RoomStatus            `json:"status"`
	MaxPlayers     int                   `json:"max_players"`
	CurrentPlayers int                   `json:"current_players"`
	Players        map[string]PlayerInfo `json:"players"`
	Invites        map[string]Invite     `json:"invites"`
	WheelItems     []WheelItem           `json:"wheel_items"`
	Game           GameState             `json:"game_state"`
	Version        int64                 `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
}

// IsMember reports whether username has an entry in the room. Entries survive
// mid-game departure, so this is membership in the session, not presence.
func (r *Room) IsMember(username string) bool {
	_, ok := r.Players[username]
	return ok
}
