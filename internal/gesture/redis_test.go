package gesture

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	redis "github.com/redis/go-redis/v9"
)

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisFeedIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	defer client.Close()

	bus := NewBus()
	rec := &recorder{}
	bus.Subscribe(rec)

	channel := "gesture_test_" + time.Now().Format("150405.000")
	feed := NewRedisFeed(client, channel, bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = feed.Run(ctx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for !bus.Connected() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if !bus.Connected() {
		t.Fatal("redis feed never attached")
	}

	// the subscription may not be active yet; publish until it lands
	for time.Now().Before(deadline) {
		if err := Publish(ctx, client, channel, "Scissors"); err != nil {
			t.Fatalf("publish: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
		rec.mu.Lock()
		n := len(rec.events)
		rec.mu.Unlock()
		if n > 0 {
			break
		}
	}

	rec.mu.Lock()
	if len(rec.events) == 0 || rec.events[0].Label != "Scissors" || rec.events[0].Source != "redis" {
		rec.mu.Unlock()
		t.Fatalf("unexpected events: %+v", rec.events)
	}
	rec.mu.Unlock()

	cancel()
	<-done
	if bus.Connected() {
		t.Fatal("feed should detach on shutdown")
	}
}

func TestRedisFeedDropsUnknownLabels(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bus := NewBus(WithClock(clock), WithDebounce(NewDebouncer(time.Second, clock)))
	rec := &recorder{}
	bus.Subscribe(rec)

	// handle never touches the client
	f := NewRedisFeed(nil, "test", bus)

	f.handle(`{"type":"gesture_detected","gesture":"Lizard"}`)
	clock.Advance(100 * time.Millisecond)
	f.handle(`{"type":"gesture_detected","gesture":"rock"}`)

	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %+v", rec.events)
	}
	if rec.events[0].Label != "Rock" || rec.events[0].Source != "redis" {
		t.Fatalf("unexpected event: %+v", rec.events[0])
	}
}
