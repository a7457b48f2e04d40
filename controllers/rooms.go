package controllers

import (
	game_constants "Spinduel/constants/game"
	redis_models "Spinduel/models/redis"
	"Spinduel/services/game"
	"Spinduel/services/notify"
	"Spinduel/services/rooms"
	"Spinduel/sync"
	"Spinduel/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Creates a new game room
// @Description The caller becomes the host of a fresh waiting room with the selected wheel
// @Tags rooms
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param body body object{items=[]object{name=string,value=integer}} true "Wheel items"
// @Success 200 {object} object{room_id=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/rooms [post]
// @Security ApiKeyAuth
func CreateRoom(db *gorm.DB, roomMgr *rooms.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			Items []redis_models.WheelItem `json:"items"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || len(body.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Wheel items are required"})
			return
		}

		host := redis_models.PlayerInfo{
			Username: user.ProfileUsername,
			Icon:     utils.UserIcon(db, user.ProfileUsername),
		}
		roomId, err := roomMgr.CreateRoom(c.Request.Context(), host, body.Items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating room"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room_id": roomId, "message": "Room created successfully"})
	}
}

// @Summary Gives info of a room
// @Description Returns the room snapshot plus the caller's derived view flags
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_id path string true "Id of the room"
// @Success 200 {object} object{room=object}
// @Failure 404 {object} object{error=string}
// @Router /auth/rooms/{room_id} [get]
// @Security ApiKeyAuth
func GetRoomInfo(db *gorm.DB, roomMgr *rooms.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		room, err := roomMgr.GetRoom(c.Request.Context(), c.Param("room_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"room":                room,
			"is_my_turn":          game.IsCurrentTurn(room, user.ProfileUsername),
			"current_turn_player": game.CurrentTurnPlayerName(room),
			"leaderboard":         game.Leaderboard(room),
		})
	}
}

// @Summary Inserts a user into a room
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_id path string true "room_id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/rooms/{room_id}/join [post]
// @Security ApiKeyAuth
func JoinRoom(db *gorm.DB, roomMgr *rooms.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		player := redis_models.PlayerInfo{
			Username: user.ProfileUsername,
			Icon:     utils.UserIcon(db, user.ProfileUsername),
		}
		if err := roomMgr.JoinRoom(c.Request.Context(), c.Param("room_id"), player); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Joined room successfully"})
	}
}

// @Summary Removes a user from a room
// @Description Mid-game departures keep the player's standings and history
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_id path string true "room_id"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/rooms/{room_id}/leave [post]
// @Security ApiKeyAuth
func LeaveRoom(db *gorm.DB, roomMgr *rooms.Manager, gameMgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		roomId := c.Param("room_id")

		// Walking out of a running game forfeits it for everyone.
		room, err := roomMgr.GetRoom(c.Request.Context(), roomId)
		if err != nil {
			respondError(c, err)
			return
		}
		if room.Status == redis_models.RoomPlaying {
			if _, err := gameMgr.EndDueToTimeout(c.Request.Context(), roomId, user.ProfileUsername, game_constants.TIMEOUT_REASON_LEFT); err != nil {
				log.Printf("[ROOM-LEAVE-WARN] Forfeit on leave failed for %s in %s: %v", user.ProfileUsername, roomId, err)
			}
		}

		if err := roomMgr.LeaveRoom(c.Request.Context(), roomId, user.ProfileUsername); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Left room successfully"})
	}
}

// @Summary Starts the game in a room
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_id path string true "room_id"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/rooms/{room_id}/start [post]
// @Security ApiKeyAuth
func StartGame(db *gorm.DB, roomMgr *rooms.Manager, syncMgr *sync.SyncManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		roomId := c.Param("room_id")

		if err := roomMgr.StartGame(c.Request.Context(), roomId, user.ProfileUsername); err != nil {
			respondError(c, err)
			return
		}

		if room, err := roomMgr.GetRoom(c.Request.Context(), roomId); err == nil {
			if err := syncMgr.SyncGameStarted(c.Request.Context(), room); err != nil {
				log.Printf("[GAME-START-WARN] In-game flags not synced for room %s: %v", roomId, err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "Game started"})
	}
}

// @Summary Records the caller's spin result and advances the turn
// @Tags game
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_id path string true "room_id"
// @Param body body object{item_name=string,item_value=integer} true "Landed wheel item"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/rooms/{room_id}/spin [post]
// @Security ApiKeyAuth
func RecordSpin(db *gorm.DB, gameMgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			ItemName  string `json:"item_name"`
			ItemValue int    `json:"item_value"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Spin result is required"})
			return
		}

		item := redis_models.WheelItem{Name: body.ItemName, Value: body.ItemValue}
		room, err := gameMgr.RecordTurnResult(c.Request.Context(), c.Param("room_id"), user.ProfileUsername, item)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := gin.H{
			"message":       "Spin recorded",
			"current_round": room.Game.CurrentRound,
			"finished":      room.Status == redis_models.RoomFinished,
		}
		if room.Game.Winner != nil {
			resp["winner"] = room.Game.Winner
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary Forfeits the game because a player timed out or left
// @Description Callable by any participant observing the stalled turn, not just the timed-out player
// @Tags game
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param room_id path string true "room_id"
// @Param body body object{timed_out_user=string,reason=string} true "Forfeit details"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/rooms/{room_id}/timeout [post]
// @Security ApiKeyAuth
func ForfeitOnTimeout(db *gorm.DB, gameMgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		var body struct {
			TimedOutUser string `json:"timed_out_user"`
			Reason       string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.TimedOutUser == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timed_out_user is required"})
			return
		}
		if body.Reason != game_constants.TIMEOUT_REASON_LEFT {
			body.Reason = game_constants.TIMEOUT_REASON_TIMEOUT
		}

		room, err := gameMgr.EndDueToTimeout(c.Request.Context(), c.Param("room_id"), body.TimedOutUser, body.Reason)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := gin.H{"message": "Game ended", "timeout_reason": room.Game.TimeoutReason}
		if room.Game.Winner != nil {
			resp["winner"] = room.Game.Winner
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary Claims the win reward for a finished game
// @Description Idempotent per (game, player); duplicate claims answer 409
// @Tags game
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param body body object{game_id=string} true "Finished game id"
// @Success 200 {object} object{points=integer,wins=integer}
// @Failure 409 {object} object{error=string}
// @Router /auth/award_win [post]
// @Security ApiKeyAuth
func AwardWin(db *gorm.DB, resolver *game.Resolver, notices *notify.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			GameId string `json:"game_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.GameId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "game_id is required"})
			return
		}

		// Local fast path; the win ledger still guards against other processes.
		if !notices.MarkOnce("award:" + body.GameId + ":" + user.ProfileUsername) {
			respondError(c, utils.ErrAlreadyProcessed)
			return
		}

		points, wins, err := resolver.AwardWin(c.Request.Context(), body.GameId, user.ProfileUsername)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"points": points, "wins": wins})
	}
}
