package handlers

import (
	redis_models "Spinduel/models/redis"
	"Spinduel/services/invites"
	"Spinduel/services/presence"
	socketio_types "Spinduel/services/socket_io/types"
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleConnect marks the user online and pushes their pending invitations.
// Returns the teardown for the invite subscription; the caller runs it on
// disconnect.
func HandleConnect(registry *presence.Registry, inviteMgr *invites.Manager,
	client *socket.Socket, username string) func() {
	ctx := context.Background()

	if err := registry.SetStatus(ctx, username, string(client.Id()), redis_models.StatusOnline); err != nil {
		log.Printf("[PRESENCE-ERROR] Could not mark %s online: %v", username, err)
	}

	unsubscribe, err := inviteMgr.SubscribeUserInvites(ctx, username, func(pending []redis_models.Invite) {
		client.Emit("invites_update", gin.H{"invites": pending, "total": len(pending)})
	})
	if err != nil {
		log.Printf("[INVITE-ERROR] Could not subscribe %s to invites: %v", username, err)
		return func() {}
	}
	return unsubscribe
}

// HandleHeartbeat refreshes the user's presence entry and its TTL.
func HandleHeartbeat(registry *presence.Registry, client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if err := registry.Heartbeat(context.Background(), username); err != nil {
			log.Printf("[PRESENCE-ERROR] Heartbeat for %s: %v", username, err)
		}
	}
}

// HandleDisconnecting releases every room watch this socket held, drops the
// connection from the map and marks the user offline.
func HandleDisconnecting(registry *presence.Registry, client *socket.Socket,
	username string, sio *socketio_types.SocketServer, stopInvites func()) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[SOCKET-DISCONNECT] User %s disconnecting (socket %s)", username, client.Id())

		for _, roomId := range sio.DrainUserRooms(username) {
			sio.ReleaseRoomWatch(roomId)
		}

		if stopInvites != nil {
			stopInvites()
		}
		sio.RemoveConnection(username)
		if err := registry.SetOffline(context.Background(), username); err != nil {
			log.Printf("[PRESENCE-ERROR] Could not mark %s offline: %v", username, err)
		}
	}
}
