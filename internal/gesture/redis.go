package gesture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gesture_rps/internal/domain"
	"gesture_rps/internal/logger"

	"github.com/go-co-op/gocron/v2"
	redis "github.com/redis/go-redis/v9"
)

const (
	redisFeedName   = "redis"
	redisProbeEvery = 5 * time.Second
	redisProbeWait  = 2 * time.Second
)

// RedisFeed subscribes to a redis pub/sub channel the classifier publishes
// gestures on and forwards them to a Bus. The feed counts as attached while
// redis answers PING.
type RedisFeed struct {
	client  *redis.Client
	channel string
	bus     *Bus
	log     *slog.Logger

	mu     sync.Mutex
	detach func()
}

func NewRedisFeed(client *redis.Client, channel string, bus *Bus) *RedisFeed {
	if channel == "" {
		channel = EventName
	}
	return &RedisFeed{
		client:  client,
		channel: channel,
		bus:     bus,
		log:     logger.With("component", "redis_feed", "channel", channel),
	}
}

// Run blocks until ctx is cancelled.
func (f *RedisFeed) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("redis feed scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(redisProbeEvery),
		gocron.NewTask(func() { f.probe(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("redis feed probe job: %w", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			f.log.Warn("scheduler shutdown", "error", err)
		}
		f.setHealthy(false)
	}()

	ps := f.client.Subscribe(ctx, f.channel)
	defer ps.Close()

	f.log.Info("subscribed")
	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			f.handle(msg.Payload)
		}
	}
}

func (f *RedisFeed) handle(payload string) {
	label, err := ParsePayload([]byte(payload))
	if err != nil {
		f.log.Warn("dropping malformed gesture", "payload", payload, "error", err)
		return
	}
	move, ok := domain.ParseMove(label)
	if !ok {
		f.log.Warn("dropping unknown gesture", "label", label)
		return
	}
	f.bus.Publish(move.Label(), redisFeedName)
}

func (f *RedisFeed) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, redisProbeWait)
	defer cancel()

	err := f.client.Ping(pctx).Err()
	if err != nil && ctx.Err() == nil {
		f.log.Warn("redis ping failed", "error", err)
	}
	f.setHealthy(err == nil)
}

func (f *RedisFeed) setHealthy(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case ok && f.detach == nil:
		f.detach = f.bus.Attach(redisFeedName)
	case !ok && f.detach != nil:
		f.detach()
		f.detach = nil
	}
}

// Publish sends a gesture on the feed channel; used by the gesture_feed tool.
func Publish(ctx context.Context, client *redis.Client, channel, label string) error {
	if channel == "" {
		channel = EventName
	}
	data := fmt.Sprintf(`{"type":%q,"gesture":%q}`, EventName, label)
	if err := client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish gesture: %w", err)
	}
	return nil
}
