package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gesture_rps/internal/logger"
	"gesture_rps/internal/match"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	LogLevel      string
	LogJSON       bool
	AllowedOrigin string

	// JWTSecret protects the gesture ingest endpoints; empty disables auth.
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	// Match timings
	RevealDelay       time.Duration
	RevealHold        time.Duration
	PlayerMoveTimeout time.Duration
	GestureDebounce   time.Duration

	APIRateLimit  int
	APIRateWindow time.Duration

	// Per-feed limit on HTTP gesture ingest; 0 disables it.
	GestureRateLimit  int
	GestureRateWindow time.Duration

	// VisionURL is the classifier service; /video_feed is proxied to it.
	VisionURL string
}

// Загрузка конфига из env (.env подхватывается если есть)
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:           getString("APP_PORT", "8080"),
		LogLevel:          strings.ToLower(getString("LOG_LEVEL", "info")),
		LogJSON:           os.Getenv("LOG_JSON") == "true",
		AllowedOrigin:     os.Getenv("ALLOWED_ORIGIN"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		RedisChannel:      getString("GESTURE_REDIS_CHANNEL", "gesture_detected"),
		RevealDelay:       getDuration("REVEAL_DELAY", match.DefaultRevealDelay),
		RevealHold:        getDuration("REVEAL_HOLD", match.DefaultRevealHold),
		PlayerMoveTimeout: getDuration("PLAYER_MOVE_TIMEOUT", 0),
		GestureDebounce:   getDuration("GESTURE_DEBOUNCE", 0),
		APIRateLimit:      getInt("API_RATE_LIMIT", 60),
		APIRateWindow:     time.Duration(getInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		GestureRateLimit:  getInt("GESTURE_RATE_LIMIT", 1800),
		GestureRateWindow: time.Duration(getInt("GESTURE_RATE_WINDOW_SECONDS", 60)) * time.Second,
		VisionURL:         strings.TrimRight(os.Getenv("VISION_URL"), "/"),
	}
}

// Timings returns the match timings from the config.
func (c *Config) Timings() match.Timings {
	return match.Timings{
		RevealDelay:       c.RevealDelay,
		RevealHold:        c.RevealHold,
		PlayerMoveTimeout: c.PlayerMoveTimeout,
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("invalid integer in env, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// getDuration accepts Go durations ("2.5s") or plain seconds ("3").
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	logger.Warn("invalid duration in env, using default", "key", key, "value", v, "default", def)
	return def
}
