package controllers

import (
	"Spinduel/middleware"
	models "Spinduel/models/postgres"
	"Spinduel/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// authenticatedUser resolves the requesting account from the JWT. On failure
// the response has already been written and the handler should just return.
func authenticatedUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	email, err := middleware.JWT_decoder(c)
	if err != nil {
		c.Abort()
		return nil, false
	}
	user, err := utils.UserByEmail(db, email)
	if err != nil {
		c.JSON(404, gin.H{"error": "User not found"})
		return nil, false
	}
	return user, true
}

// respondError translates a taxonomy error into the matching HTTP answer.
func respondError(c *gin.Context, err error) {
	c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
}
