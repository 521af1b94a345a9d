package http

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type EngineDeps struct {
	Handler          *Handler
	Gate             gin.HandlerFunc
	RateLimit        gin.HandlerFunc
	Health           map[string]HealthCheck
	Metrics          *prometheus.Registry
	AllowedOrigins   []string
	AllowCredentials bool
	Log              *zap.Logger
}

// NewEngine builds the gin engine with the global middleware stack and every
// route mounted.
func NewEngine(d EngineDeps) (*gin.Engine, *Router) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(d.Log))
	engine.Use(middleware.Metrics())

	if len(d.AllowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: d.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				"X-Requested-With",
			},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: d.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	router := NewRouter(engine, d.Gate)
	d.Handler.Register(router, d.RateLimit)

	router.GET("/health", Health(d.Health, d.Log), Public())
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Metrics)), Public())
	}

	return engine, router
}
