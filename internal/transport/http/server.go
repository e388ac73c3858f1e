package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/whisperspace/server/internal/auth"
	"github.com/whisperspace/server/internal/config"
	"github.com/whisperspace/server/internal/core"
	"github.com/whisperspace/server/internal/reaper"
	"github.com/whisperspace/server/internal/store"
)

// NewServer builds the HTTP server: REST surface plus the /ws gateway.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, rp *reaper.Reaper, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(st, logger)
	adminHandlers := NewAdminHandlers(rp, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	router.POST("/api/register", apiHandlers.Register)
	router.POST("/api/login", apiHandlers.Login)
	router.POST("/api/guest", apiHandlers.GuestLogin)

	authed := router.Group("/api", AuthMiddleware(authService, logger))
	authed.POST("/rooms", roomHandlers.CreateRoom)
	authed.POST("/rooms/:code/join", roomHandlers.JoinRoom)
	authed.POST("/rooms/:code/leave", roomHandlers.LeaveRoom)
	authed.POST("/admin/reap", adminHandlers.Reap)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
