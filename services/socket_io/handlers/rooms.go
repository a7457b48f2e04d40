package handlers

import (
	game_constants "Spinduel/constants/game"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/game"
	"Spinduel/services/rooms"
	socketio_types "Spinduel/services/socket_io/types"
	"Spinduel/services/store"
	"Spinduel/utils"
	"context"
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// HandleJoinRoom sockets the user into a room and wires the live bridge: the
// first observer of a room starts a store subscription that re-emits every
// document change as a room_update event, plus the turn timeout watchdog.
func HandleJoinRoom(s *store.Store, roomMgr *rooms.Manager, gameMgr *game.Manager,
	client *socket.Socket, db *gorm.DB, username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}
		roomId, ok := args[0].(string)
		if !ok || roomId == "" {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}
		log.Printf("[SOCKET-JOIN] User %s joining room %s (socket %s)", username, roomId, client.Id())

		ctx := context.Background()
		room, err := roomMgr.GetRoom(ctx, roomId)
		if err != nil {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		// HTTP join is the write path; a socket join for a non-member of a
		// waiting room performs it too so a single event is enough.
		if !room.IsMember(username) {
			player := redis_models.PlayerInfo{Username: username, Icon: utils.UserIcon(db, username)}
			if err := roomMgr.JoinRoom(ctx, roomId, player); err != nil {
				client.Emit("error", gin.H{"error": err.Error()})
				return
			}
			room, err = roomMgr.GetRoom(ctx, roomId)
			if err != nil {
				client.Emit("error", gin.H{"error": "Room not found"})
				return
			}
		}

		client.Join(socket.Room(roomId))
		sio.TrackUserRoom(username, roomId)

		sio.AcquireRoomWatch(roomId, func() func() {
			return startRoomBridge(s, gameMgr, sio, roomId)
		})

		client.Emit("room_joined", gin.H{"room_id": roomId, "room": room})
		sio.Sio_server.To(socket.Room(roomId)).Emit("room_update", gin.H{"room": room})
	}
}

// startRoomBridge subscribes to the room's change feed and broadcasts every
// new document to the socket room. It also runs the timeout watchdog so a
// stalled turn gets forfeited even if every client went quiet. Returns the
// teardown callback.
func startRoomBridge(s *store.Store, gameMgr *game.Manager, sio *socketio_types.SocketServer, roomId string) func() {
	ctx, cancel := context.WithCancel(context.Background())

	unsubscribe, err := s.Subscribe(ctx, store.FormatRoomKey(roomId), func(u store.Update) {
		if u.Deleted() {
			sio.Sio_server.To(socket.Room(roomId)).Emit("room_closed", gin.H{"room_id": roomId})
			return
		}
		var room redis_models.Room
		if err := json.Unmarshal(u.Payload, &room); err != nil {
			log.Printf("[BRIDGE-ERROR] Bad room document on %s: %v", u.Key, err)
			return
		}
		sio.Sio_server.To(socket.Room(roomId)).Emit("room_update", gin.H{"room": &room})
		if room.Status == redis_models.RoomFinished {
			sio.Sio_server.To(socket.Room(roomId)).Emit("game_end", gin.H{
				"winner":         room.Game.Winner,
				"scores":         room.Game.Scores,
				"timeout_reason": room.Game.TimeoutReason,
			})
		}
	})
	if err != nil {
		log.Printf("[BRIDGE-ERROR] Could not subscribe to room %s: %v", roomId, err)
	}

	watchdog := game.NewWatchdog(s, gameMgr)
	go watchdog.Watch(ctx, roomId)

	return func() {
		cancel()
		if unsubscribe != nil {
			unsubscribe()
		}
	}
}

// HandleLeaveRoom detaches the socket from the room. Leaving the document is
// the HTTP endpoint's job; here we only drop the live wiring.
func HandleLeaveRoom(client *socket.Socket, username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}
		roomId, ok := args[0].(string)
		if !ok || roomId == "" {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}
		log.Printf("[SOCKET-LEAVE] User %s leaving room %s", username, roomId)
		client.Leave(socket.Room(roomId))
		sio.ForgetUserRoom(username, roomId)
		sio.ReleaseRoomWatch(roomId)
		client.Emit("room_left", gin.H{"room_id": roomId})
	}
}

// HandleSpin records the caller's wheel result; the broadcast to the room
// happens through the store bridge, not here.
func HandleSpin(gameMgr *game.Manager, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Spin payload is missing"})
			return
		}
		payload, ok := args[0].(map[string]interface{})
		if !ok {
			client.Emit("error", gin.H{"error": "Bad spin payload"})
			return
		}
		roomId, _ := payload["room_id"].(string)
		itemName, _ := payload["item_name"].(string)
		itemValue, _ := payload["item_value"].(float64)
		if roomId == "" {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}

		item := redis_models.WheelItem{Name: itemName, Value: int(itemValue)}
		room, err := gameMgr.RecordTurnResult(context.Background(), roomId, username, item)
		if err != nil {
			log.Printf("[SPIN-ERROR] User %s in room %s: %v", username, roomId, err)
			client.Emit("error", gin.H{"error": err.Error()})
			return
		}
		client.Emit("spin_recorded", gin.H{
			"room_id":       roomId,
			"current_round": room.Game.CurrentRound,
			"finished":      room.Status == redis_models.RoomFinished,
		})
	}
}

// HandleTimeoutReport lets any participant flag a stalled turn. The game
// manager re-checks the deadline against the server clock before forfeiting.
func HandleTimeoutReport(s *store.Store, gameMgr *game.Manager, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}
		roomId, ok := args[0].(string)
		if !ok || roomId == "" {
			client.Emit("error", gin.H{"error": "Room id is missing"})
			return
		}
		ctx := context.Background()

		var room redis_models.Room
		found, err := s.GetJSON(ctx, store.FormatRoomKey(roomId), &room)
		if err != nil || !found {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}
		if room.Status != redis_models.RoomPlaying || room.Game.TurnStartTime.IsZero() {
			return
		}
		now, err := s.Now(ctx)
		if err != nil {
			return
		}
		if now.Sub(room.Game.TurnStartTime) <= game_constants.TURN_TIMEOUT {
			client.Emit("error", gin.H{"error": "Turn has not timed out yet"})
			return
		}

		stalled := game.CurrentTurnPlayerName(&room)
		if _, err := gameMgr.EndDueToTimeout(ctx, roomId, stalled, game_constants.TIMEOUT_REASON_TIMEOUT); err != nil {
			// Somebody else already ended it, nothing to report.
			log.Printf("[TIMEOUT] Report by %s for room %s resolved elsewhere: %v", username, roomId, err)
		}
	}
}
