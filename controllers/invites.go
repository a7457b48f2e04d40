package controllers

import (
	redis_models "Spinduel/models/redis"
	"Spinduel/services/game"
	"Spinduel/services/invites"
	"Spinduel/services/store"
	"Spinduel/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Sends an invitation to join the caller's room
// @Description Invitations stay valid for sixty seconds and may only go to users who are not mid-game
// @Tags invites
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param body body object{room_id=string,to_username=string} true "Invitation target"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/invites [post]
// @Security ApiKeyAuth
func SendInvite(db *gorm.DB, inviteMgr *invites.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			RoomId     string `json:"room_id"`
			ToUsername string `json:"to_username"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.RoomId == "" || body.ToUsername == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room_id and to_username are required"})
			return
		}
		if body.ToUsername == user.ProfileUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot invite yourself"})
			return
		}

		if err := inviteMgr.SendInvite(c.Request.Context(), body.RoomId, user.ProfileUsername, body.ToUsername); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation sent"})
	}
}

// @Summary Accepts an invitation and joins the room
// @Description Accepting an invitation that expired removes it and answers 410
// @Tags invites
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param body body object{room_id=string} true "Room of the invitation"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Failure 410 {object} object{error=string}
// @Router /auth/invites/accept [post]
// @Security ApiKeyAuth
func AcceptInvite(db *gorm.DB, inviteMgr *invites.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			RoomId string `json:"room_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.RoomId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room_id is required"})
			return
		}

		player := redis_models.PlayerInfo{
			Username: user.ProfileUsername,
			Icon:     utils.UserIcon(db, user.ProfileUsername),
		}
		if err := inviteMgr.AcceptInvite(c.Request.Context(), body.RoomId, player); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted", "room_id": body.RoomId})
	}
}

// @Summary Declines an invitation
// @Tags invites
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param body body object{room_id=string} true "Room of the invitation"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/invites/decline [post]
// @Security ApiKeyAuth
func DeclineInvite(db *gorm.DB, inviteMgr *invites.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			RoomId string `json:"room_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.RoomId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room_id is required"})
			return
		}

		if err := inviteMgr.DeclineInvite(c.Request.Context(), body.RoomId, user.ProfileUsername); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
	}
}

// @Summary Lists the caller's pending invitations
// @Description Expired invitations are reaped while answering; each entry carries its remaining lifetime
// @Tags invites
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{invites=[]object}
// @Failure 500 {object} object{error=string}
// @Router /auth/invites [get]
// @Security ApiKeyAuth
func GetUserInvites(db *gorm.DB, inviteMgr *invites.Manager, s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		pending, err := inviteMgr.ListInvites(c.Request.Context(), user.ProfileUsername)
		if err != nil {
			respondError(c, err)
			return
		}

		now, err := s.Now(c.Request.Context())
		if err != nil {
			now = time.Now()
		}

		type inviteView struct {
			redis_models.Invite
			RemainingSeconds int `json:"remaining_seconds"`
		}
		views := make([]inviteView, 0, len(pending))
		for i := range pending {
			views = append(views, inviteView{
				Invite:           pending[i],
				RemainingSeconds: int(game.RemainingInviteTime(&pending[i], now) / time.Second),
			})
		}
		c.JSON(http.StatusOK, gin.H{"invites": views})
	}
}
