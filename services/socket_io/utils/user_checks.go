package socketio_utils

import (
	"Spinduel/middleware"
	models "Spinduel/models/postgres"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// VerifyUserConnection authenticates a socket.io handshake with the same JWT
// the HTTP API uses and resolves the account's public username.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, username, email string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("No auth data provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, "", ""
	}

	email, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		log.Printf("[SOCKET-AUTH-ERROR] Invalid handshake JWT: %v", err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid JWT. Set it on the 'authorization' field with the 'Bearer ' prefix.",
		})
		return false, "", ""
	}

	var user models.User
	if result := db.Where("email = ?", email).First(&user); result.Error != nil {
		log.Printf("[SOCKET-AUTH-ERROR] No account for %s: %v", email, result.Error)
		client.Emit("error", gin.H{"error": "Authentication failed: could not find user"})
		return false, "", email
	}

	return true, user.ProfileUsername, email
}
