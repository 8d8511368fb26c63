package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/studo-sync-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/studo-sync-engine/internal/adapters/metrics"

	_ "github.com/comitanigiacomo/studo-sync-engine/docs"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDependencies struct {
	AuthHandler       *AuthHandler
	ProfileHandler    *ProfileHandler
	AttendanceHandler *AttendanceHandler
	AnalyticsHandler  *AnalyticsHandler
	ForecastHandler   *ForecastHandler
	HabitHandler      *HabitHandler
	TaskHandler       *TaskHandler
	ExamHandler       *ExamHandler
	ExportHandler     *ExportHandler
	TokenValidator    middleware.TokenValidator

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// DB is nil when running on in-memory storage.
	DB    Pinger
	Redis *redis.Client

	RateLimit   int
	RateWindow  time.Duration
	CORSOrigins []string
	StartTime   time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	} else if deps.Logger != nil {
		router.Use(middleware.RequestLogger(deps.Logger))
	}
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/health", health(deps))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var limiter []gin.HandlerFunc
	if deps.Redis != nil && deps.RateLimit > 0 {
		limiter = append(limiter, middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow))
	}

	apiV1 := router.Group("/api/v1")

	public := apiV1.Group("", limiter...)
	deps.AuthHandler.RegisterRoutes(public)

	// The limiter runs after auth so callers are counted per student, not per IP.
	protected := apiV1.Group("", middleware.AuthMiddleware(deps.TokenValidator))
	protected.Use(limiter...)
	{
		deps.ProfileHandler.RegisterRoutes(protected)
		deps.AttendanceHandler.RegisterRoutes(protected)
		deps.AnalyticsHandler.RegisterRoutes(protected)
		deps.ForecastHandler.RegisterRoutes(protected)
		deps.HabitHandler.RegisterRoutes(protected)
		deps.TaskHandler.RegisterRoutes(protected)
		deps.ExamHandler.RegisterRoutes(protected)
		deps.ExportHandler.RegisterRoutes(protected)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func health(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "memory"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		status, code := "ok", http.StatusOK
		if dbStatus == "unreachable" {
			status, code = "error", http.StatusServiceUnavailable
		} else if redisStatus == "unreachable" {
			status = "degraded"
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
