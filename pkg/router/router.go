package router

import (
	"net/http"

	"chatonline-world/backend/internal/api"
	"chatonline-world/backend/pkg/cache"
	"chatonline-world/backend/pkg/di"
	"chatonline-world/backend/pkg/errors"
	"chatonline-world/backend/pkg/logger"
	"chatonline-world/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Router mounts the service's HTTP surface on a gin engine
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New builds the engine and its global middleware chain
func New(container *di.Container) *Router {
	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(container.Config.Security.TrustedProxies); err != nil {
		container.Logger.Warn("Invalid trusted proxies, trusting none", "error", err.Error())
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		logger.Middleware(container.Logger),
		errors.ErrorHandler(),
		errors.RecoveryWithLogger(),
		corsMiddleware(),
	)

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers the page, the JSON API and the feed. metrics may be nil.
func (r *Router) SetupRoutes(metrics http.Handler) error {
	if err := api.RegisterIndex(r.Engine); err != nil {
		return err
	}

	cfg := r.Container.Config

	// The limiter sits outside the cache so cached answers still count
	rateLimiter := middleware.PerMinute(r.Logger, cfg.Security.RateLimitPerMinute)
	responseCache := cache.Middleware(r.Container.ResponseCache, cfg.Cache.TTL)

	messageController := api.NewMessageController(r.Container.MessageService)
	summaryController := api.NewSummaryController(r.Container.SummaryService)

	apiRoutes := r.Engine.Group("/api")
	{
		apiRoutes.GET("/health", gin.WrapH(r.Container.Health))
		messageController.RegisterRoutes(apiRoutes)
		summaryController.RegisterRoutes(apiRoutes, rateLimiter.Middleware(), responseCache)
	}

	if metrics != nil {
		r.Engine.GET("/metrics", gin.WrapH(metrics))
	}

	r.Engine.GET("/ws", r.Container.Hub.ServeWs)

	return nil
}

// corsMiddleware allows browser clients on other origins, including websocket upgrades
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, X-Request-ID, Origin, Upgrade, Connection, Cache-Control")
		h.Set("Access-Control-Expose-Headers", "X-Cache, X-Request-ID, Retry-After")
		h.Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
