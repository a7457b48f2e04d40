package socket_io

import (
	"Spinduel/services/game"
	"Spinduel/services/invites"
	"Spinduel/services/presence"
	"Spinduel/services/rooms"
	"Spinduel/services/socket_io/handlers"
	"Spinduel/services/store"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	socketio_types "Spinduel/services/socket_io/types"
	socketio_utils "Spinduel/services/socket_io/utils"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Services is everything the realtime layer needs from the rest of the app.
type Services struct {
	Store    *store.Store
	Rooms    *rooms.Manager
	Game     *game.Manager
	Invites  *invites.Manager
	Presence *presence.Registry
}

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, svc *Services) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		success, username, _ := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		(*socketio_types.SocketServer)(sio).AddConnection(username, client)
		fmt.Println("An individual just connected!: ", username)

		// Presence plus the live pending-invites feed
		stopInvites := handlers.HandleConnect(svc.Presence, svc.Invites, client, username)

		// Join a room's socket channel; first observer wires the change
		// bridge and the turn timeout watchdog
		client.On("join_room", handlers.HandleJoinRoom(svc.Store, svc.Rooms, svc.Game,
			client, db, username, (*socketio_types.SocketServer)(sio)))

		client.On("leave_room", handlers.HandleLeaveRoom(client, username, (*socketio_types.SocketServer)(sio)))

		// Record a wheel result for the caller's turn
		client.On("spin", handlers.HandleSpin(svc.Game, client, username))

		// Flag a stalled turn; the server re-checks the deadline itself
		client.On("report_timeout", handlers.HandleTimeoutReport(svc.Store, svc.Game, client, username))

		client.On("heartbeat", handlers.HandleHeartbeat(svc.Presence, client, username))

		client.On("disconnecting", handlers.HandleDisconnecting(svc.Presence, client, username,
			(*socketio_types.SocketServer)(sio), stopInvites))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
