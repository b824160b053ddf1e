package http

import (
	"time"

	"gesture_rps/internal/config"
	"gesture_rps/internal/gesture"
	"gesture_rps/internal/http/handlers"
	"gesture_rps/internal/http/middleware"
	"gesture_rps/internal/logger"
	"gesture_rps/internal/match"
	"gesture_rps/internal/service"
	"gesture_rps/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is implemented by the redis and in-memory limiters.
type RateLimiter interface {
	Limit(maxRequests int, window time.Duration, keyFn middleware.KeyFunc) gin.HandlerFunc
}

type Deps struct {
	Config  *config.Config
	Match   *match.Orchestrator
	Bus     *gesture.Bus
	Hub     *ws.Hub
	Redis   *redis.Client
	Version string
}

// NewRouter builds the gin engine with the standard middleware stack.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLog(), middleware.Metrics(), middleware.CORS(d.Config.AllowedOrigin))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	var limiter RateLimiter
	if d.Redis != nil {
		limiter = middleware.NewRedisRateLimiter(d.Redis, "rl")
	} else {
		limiter = middleware.NewMemoryRateLimiter(nil)
	}

	issuer := service.NewTokenIssuer(cfg.JWTSecret)
	if !issuer.Enabled() {
		logger.Warn("JWT_SECRET not set, gesture feeds are unauthenticated")
	}

	h := handlers.NewHandler(d.Match, d.Bus)
	healthHandler := handlers.NewHealthHandler(handlers.RedisPinger(d.Redis), d.Bus, d.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	video, err := handlers.VideoFeed(cfg.VisionURL)
	if err != nil {
		logger.Error("invalid VISION_URL, video feed disabled", "url", cfg.VisionURL, "error", err)
		video, _ = handlers.VideoFeed("")
	}
	r.GET("/video_feed", video)

	v1 := r.Group("/api/v1")
	v1.Use(limiter.Limit(cfg.APIRateLimit, cfg.APIRateWindow, middleware.ByClientIP))
	{
		v1.GET("/match", h.GetMatch)
		v1.POST("/match/start", h.StartMatch)
		v1.POST("/match/reset", h.ResetMatch)
	}

	// Gesture ingest is authenticated per feed and limited per feed, not per
	// IP. The limit is sized for a classifier posting at frame rate.
	ingest := []gin.HandlerFunc{h.PostGesture}
	if cfg.GestureRateLimit > 0 {
		ingest = append([]gin.HandlerFunc{
			limiter.Limit(cfg.GestureRateLimit, cfg.GestureRateWindow, middleware.ByFeedSubject),
		}, ingest...)
	}

	feeds := r.Group("")
	feeds.Use(middleware.FeedAuth(issuer))
	{
		feeds.POST("/api/v1/gestures", ingest...)
		feeds.GET("/ws/gesture", ws.ServeFeed(ws.NewFeed(d.Bus), cfg.AllowedOrigin))
	}

	r.GET("/ws", ws.ServePresentation(d.Hub, cfg.AllowedOrigin))
}
