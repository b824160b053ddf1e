package config

import (
	"testing"
	"time"

	"gesture_rps/internal/match"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "REVEAL_DELAY", "REVEAL_HOLD", "PLAYER_MOVE_TIMEOUT", "GESTURE_DEBOUNCE", "REDIS_ADDR", "JWT_SECRET", "API_RATE_LIMIT", "GESTURE_RATE_LIMIT", "GESTURE_RATE_WINDOW_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.AppPort != "8080" {
		t.Fatalf("AppPort = %q", cfg.AppPort)
	}
	if cfg.RevealDelay != match.DefaultRevealDelay || cfg.RevealHold != match.DefaultRevealHold {
		t.Fatalf("unexpected timings %v / %v", cfg.RevealDelay, cfg.RevealHold)
	}
	if cfg.PlayerMoveTimeout != 0 {
		t.Fatalf("player move timeout should be off by default, got %v", cfg.PlayerMoveTimeout)
	}
	if cfg.RedisChannel != "gesture_detected" {
		t.Fatalf("RedisChannel = %q", cfg.RedisChannel)
	}
	if cfg.APIRateLimit != 60 || cfg.APIRateWindow != time.Minute {
		t.Fatalf("unexpected rate limit %d/%v", cfg.APIRateLimit, cfg.APIRateWindow)
	}
	if cfg.GestureRateLimit != 1800 || cfg.GestureRateWindow != time.Minute {
		t.Fatalf("unexpected gesture rate limit %d/%v", cfg.GestureRateLimit, cfg.GestureRateWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("REVEAL_DELAY", "1.5s")
	t.Setenv("REVEAL_HOLD", "2")
	t.Setenv("PLAYER_MOVE_TIMEOUT", "10s")
	t.Setenv("GESTURE_DEBOUNCE", "bogus")
	t.Setenv("REDIS_DB", "-1")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("VISION_URL", "http://vision:5001/")

	cfg := Load()

	if cfg.AppPort != "9000" {
		t.Fatalf("AppPort = %q", cfg.AppPort)
	}
	tm := cfg.Timings()
	if tm.RevealDelay != 1500*time.Millisecond || tm.RevealHold != 2*time.Second || tm.PlayerMoveTimeout != 10*time.Second {
		t.Fatalf("unexpected timings %+v", tm)
	}
	if cfg.GestureDebounce != 0 {
		t.Fatalf("invalid debounce should fall back to default, got %v", cfg.GestureDebounce)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("negative REDIS_DB should fall back, got %d", cfg.RedisDB)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.VisionURL != "http://vision:5001" {
		t.Fatalf("VisionURL = %q", cfg.VisionURL)
	}
}
