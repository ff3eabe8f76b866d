package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/contractchecker-server/internal/api/http/handler"
	"github.com/dtroode/contractchecker-server/internal/api/http/middleware"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

// SessionService creates sessions and resolves session cookies.
type SessionService interface {
	handler.SessionService
	middleware.SessionResolver
}

// Router represents the HTTP router for the session boundary and probes.
type Router struct {
	sessionService SessionService
	database       model.Pinger
	cookie         handler.CookieOptions
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	sessionService SessionService,
	database model.Pinger,
	cookie handler.CookieOptions,
	logger *logger.Logger,
) *Router {
	return &Router{
		sessionService: sessionService,
		database:       database,
		cookie:         cookie,
		logger:         logger,
	}
}

// Register builds the gin engine with every route mounted.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Recovery(r.logger),
		middleware.Logging(r.logger),
		middleware.Metrics(),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	r.registerHealthRoutes(engine)
	r.registerSessionRoutes(engine)

	return engine
}

func (r *Router) registerHealthRoutes(engine *gin.Engine) {
	health := handler.NewHealth(r.database, r.logger)
	engine.GET("/health/live", health.Live)
	engine.GET("/health/ready", health.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) registerSessionRoutes(engine *gin.Engine) {
	session := handler.NewSession(r.sessionService, r.cookie, r.logger)

	api := engine.Group("/api")
	api.POST("/session", session.Create)
	api.DELETE("/session", session.Delete)

	protected := api.Group("", middleware.RequireSession(r.sessionService, r.cookie.Name))
	protected.GET("/me", session.Me)
}
