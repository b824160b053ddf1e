package gesture

import (
	"sync"

	"gesture_rps/internal/logger"

	"github.com/jonboulle/clockwork"
)

// Bus fans gestures out to subscribers. Feeds (websocket classifier
// connections, the redis subscriber) Attach while they are live; the bus
// reports connected while at least one feed is attached.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]Subscriber
	subSeq int
	feeds  map[string]int

	clock     clockwork.Clock
	debouncer *Debouncer
}

type BusOption func(*Bus)

// WithClock sets the time source for event timestamps and debouncing.
func WithClock(c clockwork.Clock) BusOption {
	return func(b *Bus) { b.clock = c }
}

// WithDebounce drops gestures that arrive too quickly after the previous one.
func WithDebounce(d *Debouncer) BusOption {
	return func(b *Bus) { b.debouncer = d }
}

func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:  make(map[int]Subscriber),
		feeds: make(map[string]int),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(s Subscriber) func() {
	b.mu.Lock()
	b.subSeq++
	id := b.subSeq
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.feeds) > 0
}

// Feeds returns the number of live connections per feed name.
func (b *Bus) Feeds() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]int, len(b.feeds))
	for k, v := range b.feeds {
		out[k] = v
	}
	return out
}

// Publish delivers a gesture to every subscriber. It returns false when the
// debouncer swallowed it.
func (b *Bus) Publish(label, source string) bool {
	if b.debouncer != nil && !b.debouncer.Allow(label) {
		logger.Debug("gesture debounced", "label", label, "source", source)
		return false
	}

	ev := Event{Label: label, Source: source, At: b.clock.Now()}
	for _, s := range b.subscribers() {
		s.OnGesture(ev)
	}
	return true
}

// Attach marks one connection of feed as live. The returned detach is idempotent.
func (b *Bus) Attach(feed string) (detach func()) {
	b.mu.Lock()
	wasConnected := len(b.feeds) > 0
	b.feeds[feed]++
	b.mu.Unlock()

	logger.Info("gesture feed attached", "feed", feed)
	if !wasConnected {
		b.notifyStatus(true)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.feeds[feed]--
			if b.feeds[feed] <= 0 {
				delete(b.feeds, feed)
			}
			nowConnected := len(b.feeds) > 0
			b.mu.Unlock()

			logger.Info("gesture feed detached", "feed", feed)
			if !nowConnected {
				b.notifyStatus(false)
			}
		})
	}
}

func (b *Bus) subscribers() []Subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		out = append(out, s)
	}
	return out
}

func (b *Bus) notifyStatus(connected bool) {
	for _, s := range b.subscribers() {
		s.OnStatus(connected)
	}
}
