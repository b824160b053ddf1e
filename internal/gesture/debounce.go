package gesture

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer thins a frame-rate classifier stream. A label is emitted at
// most once per interval, and a label that keeps being seen (a held
// gesture) is emitted once until it disappears for a full interval.
type Debouncer struct {
	interval time.Duration
	clock    clockwork.Clock

	mu        sync.Mutex
	lastLabel string
	lastSeen  time.Time
	lastEmit  time.Time
}

func NewDebouncer(interval time.Duration, clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{interval: interval, clock: clock}
}

func (d *Debouncer) Allow(label string) bool {
	if d.interval <= 0 {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()

	if label == d.lastLabel && now.Sub(d.lastSeen) < d.interval {
		d.lastSeen = now
		return false
	}
	if !d.lastEmit.IsZero() && now.Sub(d.lastEmit) < d.interval {
		return false
	}

	d.lastLabel = label
	d.lastSeen = now
	d.lastEmit = now
	return true
}
