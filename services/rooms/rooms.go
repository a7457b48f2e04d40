package rooms

import (
	game_constants "Spinduel/constants/game"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Manager owns the room lifecycle: create, join, leave, start. Every
// mutation is one compare-and-set cycle against the shared Room document, so
// two concurrent joins racing for the last slot cannot both land.
type Manager struct {
	store *store.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// CreateRoom allocates a fresh waiting room with the host as its only member.
// The wheel items are fixed here and immutable for the life of the session.
func (m *Manager) CreateRoom(ctx context.Context, host redis_models.PlayerInfo, items []redis_models.WheelItem) (string, error) {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}
	host.JoinedAt = now
	host.Score = 0

	room := &redis_models.Room{
		Id:             uuid.New().String(),
		HostUsername:   host.Username,
		Status:         redis_models.RoomWaiting,
		MaxPlayers:     game_constants.MaxPlayers,
		CurrentPlayers: 1,
		Players:        map[string]redis_models.PlayerInfo{host.Username: host},
		Invites:        map[string]redis_models.Invite{},
		WheelItems:     items,
		Game: redis_models.GameState{
			TotalRounds: game_constants.TotalRounds,
			PlayerOrder: []string{host.Username},
			Scores:      map[string]int{host.Username: 0},
			SpinHistory: []redis_models.SpinRecord{},
		},
		Version:   1,
		CreatedAt: now,
	}

	if err := m.store.SetJSON(ctx, store.FormatRoomKey(room.Id), room); err != nil {
		log.Printf("[ROOM-ERROR] Failed to create room for host %s: %v", host.Username, err)
		return "", err
	}

	log.Printf("[ROOM] Room %s created by %s with %d wheel items", room.Id, host.Username, len(items))
	return room.Id, nil
}

// GetRoom reads the current room snapshot.
func (m *Manager) GetRoom(ctx context.Context, roomId string) (*redis_models.Room, error) {
	var room redis_models.Room
	found, err := m.store.GetJSON(ctx, store.FormatRoomKey(roomId), &room)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.ErrNotFound
	}
	return &room, nil
}

// JoinRoom adds user to a waiting room with a free slot.
func (m *Manager) JoinRoom(ctx context.Context, roomId string, user redis_models.PlayerInfo) error {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		return ApplyJoin(&room, user, now)
	})
	if err != nil {
		log.Printf("[ROOM-JOIN-ERROR] User %s could not join room %s: %v", user.Username, roomId, err)
		return err
	}

	log.Printf("[ROOM-JOIN] User %s joined room %s (%d/%d)", user.Username, roomId, room.CurrentPlayers, room.MaxPlayers)
	return nil
}

// LeaveRoom removes a player from a waiting room, or only decrements the
// counter once the game has begun so standings and history survive the
// departure. A host leaving an otherwise-empty waiting room deletes it.
func (m *Manager) LeaveRoom(ctx context.Context, roomId, username string) error {
	var room redis_models.Room
	err := m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		return ApplyLeave(&room, username)
	})
	if err != nil {
		log.Printf("[ROOM-LEAVE-ERROR] User %s could not leave room %s: %v", username, roomId, err)
		return err
	}

	if room.Status == redis_models.RoomWaiting && room.CurrentPlayers == 0 && username == room.HostUsername {
		if err := m.store.Delete(ctx, store.FormatRoomKey(roomId)); err != nil {
			log.Printf("[ROOM-LEAVE-ERROR] Failed to delete empty room %s: %v", roomId, err)
			return err
		}
		log.Printf("[ROOM-LEAVE] Host %s left, empty room %s deleted", username, roomId)
		return nil
	}

	log.Printf("[ROOM-LEAVE] User %s left room %s", username, roomId)
	return nil
}

// StartGame transitions a full waiting room to playing and resets the game
// state for round 1. The host may start; so may anyone once a second player
// is in (the auto-start path the second joiner triggers).
func (m *Manager) StartGame(ctx context.Context, roomId, requester string) error {
	now, err := m.store.Now(ctx)
	if err != nil {
		now = time.Now()
	}

	var room redis_models.Room
	err = m.store.UpdateJSON(ctx, store.FormatRoomKey(roomId), &room, func() error {
		return ApplyStart(&room, requester, now)
	})
	if err != nil {
		log.Printf("[GAME-START-ERROR] Room %s could not start (requested by %s): %v", roomId, requester, err)
		return err
	}

	log.Printf("[GAME-START] Room %s started by %s, turn order %v", roomId, requester, room.Game.PlayerOrder)
	return nil
}

// ApplyJoin validates and applies a join against a room snapshot.
func ApplyJoin(room *redis_models.Room, user redis_models.PlayerInfo, now time.Time) error {
	if room.Status != redis_models.RoomWaiting {
		return utils.ErrInvalidState
	}
	if room.IsMember(user.Username) {
		return utils.ErrAlreadyProcessed
	}
	if room.CurrentPlayers >= room.MaxPlayers {
		return utils.ErrRoomFull
	}

	user.JoinedAt = now
	user.Score = 0
	room.Players[user.Username] = user
	room.Game.PlayerOrder = append(room.Game.PlayerOrder, user.Username)
	room.Game.Scores[user.Username] = 0
	room.CurrentPlayers++
	room.Version++
	return nil
}

// ApplyLeave validates and applies a departure against a room snapshot.
func ApplyLeave(room *redis_models.Room, username string) error {
	if !room.IsMember(username) {
		return utils.ErrNotFound
	}

	if room.Status == redis_models.RoomWaiting {
		delete(room.Players, username)
		delete(room.Game.Scores, username)
		for i, name := range room.Game.PlayerOrder {
			if name == username {
				room.Game.PlayerOrder = append(room.Game.PlayerOrder[:i], room.Game.PlayerOrder[i+1:]...)
				break
			}
		}
	}
	// Once playing or finished the entry stays: leaving mid-game must not
	// erase standings or spin history.
	if room.CurrentPlayers > 0 {
		room.CurrentPlayers--
	}
	room.Version++
	return nil
}

// ApplyStart validates and applies the waiting -> playing transition.
func ApplyStart(room *redis_models.Room, requester string, now time.Time) error {
	if !room.IsMember(requester) {
		return utils.ErrUnauthorized
	}
	if room.Status != redis_models.RoomWaiting {
		return utils.ErrInvalidState
	}
	// With two players in, any member may start: this is the auto-start
	// path the second joiner takes right after accepting an invite.
	if room.CurrentPlayers < 2 {
		return utils.ErrInvalidState
	}

	room.Status = redis_models.RoomPlaying
	room.Game.CurrentRound = 1
	room.Game.CurrentTurnIndex = 0
	room.Game.SpinHistory = []redis_models.SpinRecord{}
	room.Game.IsSpinning = false
	room.Game.TurnStartTime = now
	room.Game.Winner = nil
	room.Game.TimeoutReason = ""
	for _, name := range room.Game.PlayerOrder {
		room.Game.Scores[name] = 0
		if p, ok := room.Players[name]; ok {
			p.Score = 0
			room.Players[name] = p
		}
	}
	room.Version++
	return nil
}
