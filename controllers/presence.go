package controllers

import (
	"Spinduel/services/presence"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Lists users currently online
// @Description Returns every connected user except the caller, with icon and in-game flag
// @Tags presence
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{users=[]object}
// @Failure 500 {object} object{error=string}
// @Router /auth/users/online [get]
// @Security ApiKeyAuth
func GetOnlineUsers(db *gorm.DB, registry *presence.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		usernames, err := registry.ListOnlineUsers(c.Request.Context(), user.ProfileUsername)
		if err != nil {
			respondError(c, err)
			return
		}

		profiles, err := registry.GetUserProfiles(c.Request.Context(), usernames)
		if err != nil {
			respondError(c, err)
			return
		}

		users := make([]presence.Profile, 0, len(usernames))
		for _, name := range usernames {
			if p, found := profiles[name]; found {
				users = append(users, p)
			} else {
				users = append(users, presence.Profile{Username: name})
			}
		}
		c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
	}
}
