package routes

import (
	"Spinduel/controllers"
	"Spinduel/middleware"
	"Spinduel/services/game"
	"Spinduel/services/invites"
	"Spinduel/services/notify"
	"Spinduel/services/presence"
	"Spinduel/services/rooms"
	"Spinduel/services/store"
	spinduel_sync "Spinduel/sync"
	"database/sql"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services holds every application service the routes hand out to handlers.
type Services struct {
	Rooms    *rooms.Manager
	Game     *game.Manager
	Invites  *invites.Manager
	Presence *presence.Registry
	Resolver *game.Resolver
	Sync     *spinduel_sync.SyncManager
	Notify   *notify.Context
	Store    *store.Store
}

// BuildServices wires the service graph on top of the store and the database.
func BuildServices(s *store.Store, db *gorm.DB) *Services {
	syncManager := spinduel_sync.NewSyncManager(s, db)
	roomMgr := rooms.NewManager(s)
	registry := presence.NewRegistry(s, db)
	return &Services{
		Rooms:    roomMgr,
		Game:     game.NewManager(s, syncManager),
		Invites:  invites.NewManager(s, roomMgr, registry, db),
		Presence: registry,
		Resolver: game.NewResolver(db, s),
		Sync:     syncManager,
		Notify:   notify.NewContext(),
		Store:    s,
	}
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, sqlDB *sql.DB, svc *Services) {
	profileController := &controllers.ProfileController{DB: sqlDB}

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/signup", controllers.SignUp(db))

	api.POST("/login", controllers.Login(db))

	api.GET("/users/:username", controllers.GetUserPublicInfo(db))

	api.GET("/profiles/:username", profileController.GetProfileSummary)

	api.GET("/profiles/:username/results", profileController.GetRecentResults)

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.POST("/rooms", controllers.CreateRoom(db, svc.Rooms))

		authentication.GET("/rooms/:room_id", controllers.GetRoomInfo(db, svc.Rooms))

		authentication.POST("/rooms/:room_id/join", controllers.JoinRoom(db, svc.Rooms))

		authentication.POST("/rooms/:room_id/leave", controllers.LeaveRoom(db, svc.Rooms, svc.Game))

		authentication.POST("/rooms/:room_id/start", controllers.StartGame(db, svc.Rooms, svc.Sync))

		authentication.POST("/rooms/:room_id/spin", controllers.RecordSpin(db, svc.Game))

		authentication.POST("/rooms/:room_id/timeout", controllers.ForfeitOnTimeout(db, svc.Game))

		authentication.POST("/award_win", controllers.AwardWin(db, svc.Resolver, svc.Notify))

		authentication.GET("/invites", controllers.GetUserInvites(db, svc.Invites, svc.Store))

		authentication.POST("/invites", controllers.SendInvite(db, svc.Invites))

		authentication.POST("/invites/accept", controllers.AcceptInvite(db, svc.Invites))

		authentication.POST("/invites/decline", controllers.DeclineInvite(db, svc.Invites))

		authentication.GET("/users/online", controllers.GetOnlineUsers(db, svc.Presence))
	}
}
