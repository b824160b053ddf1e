package gesture

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type recorder struct {
	mu       sync.Mutex
	events   []Event
	statuses []bool
}

func (r *recorder) OnGesture(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) OnStatus(c bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, c)
}

func TestBusDeliversUntilUnsubscribed(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	unsub := bus.Subscribe(rec)

	bus.Publish("Rock", "test")
	unsub()
	unsub()
	bus.Publish("Paper", "test")

	if len(rec.events) != 1 || rec.events[0].Label != "Rock" || rec.events[0].Source != "test" {
		t.Fatalf("unexpected events: %+v", rec.events)
	}
}

func TestBusConnectivityFollowsFeeds(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.Subscribe(rec)

	if bus.Connected() {
		t.Fatal("no feeds attached yet")
	}

	d1 := bus.Attach("ws")
	d2 := bus.Attach("ws")
	d3 := bus.Attach("redis")
	if !bus.Connected() || bus.Feeds()["ws"] != 2 {
		t.Fatalf("expected two ws feeds, got %v", bus.Feeds())
	}

	d1()
	d1()
	d3()
	if !bus.Connected() {
		t.Fatal("one ws feed still attached")
	}
	d2()
	if bus.Connected() {
		t.Fatal("all feeds detached")
	}

	if len(rec.statuses) != 2 || rec.statuses[0] != true || rec.statuses[1] != false {
		t.Fatalf("expected exactly connect+disconnect notifications, got %v", rec.statuses)
	}
}

func TestDebouncer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(1500*time.Millisecond, clock)

	if !d.Allow("Rock") {
		t.Fatal("first gesture must pass")
	}

	// held rock streamed at frame rate
	for i := 0; i < 10; i++ {
		clock.Advance(100 * time.Millisecond)
		if d.Allow("Rock") {
			t.Fatalf("held gesture emitted again at frame %d", i)
		}
	}

	// a different gesture inside the interval is still too soon
	clock.Advance(100 * time.Millisecond)
	if d.Allow("Paper") {
		t.Fatal("paper arrived inside the interval")
	}

	clock.Advance(1500 * time.Millisecond)
	if !d.Allow("Paper") {
		t.Fatal("paper after the interval should pass")
	}

	// rock disappears for a full interval and comes back
	clock.Advance(2 * time.Second)
	if !d.Allow("Rock") {
		t.Fatal("rock shown again after a pause should pass")
	}
}

func TestBusDebounce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	bus := NewBus(WithClock(clock), WithDebounce(NewDebouncer(time.Second, clock)))
	rec := &recorder{}
	bus.Subscribe(rec)

	if !bus.Publish("Rock", "ws") {
		t.Fatal("first publish should pass")
	}
	if bus.Publish("Rock", "ws") {
		t.Fatal("repeat should be debounced")
	}
	if len(rec.events) != 1 || !rec.events[0].At.Equal(clock.Now()) {
		t.Fatalf("unexpected events: %+v", rec.events)
	}
}

func TestParsePayload(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`{"gesture":"Rock"}`, "Rock", false},
		{`{"type":"gesture_detected","gesture":"Paper"}`, "Paper", false},
		{`Scissors`, "Scissors", false},
		{`{"type":"ping","gesture":"Rock"}`, "", true},
		{`{"gesture":""}`, "", true},
		{`{"gesture":`, "", true},
		{`   `, "", true},
	}

	for _, tc := range cases {
		got, err := ParsePayload([]byte(tc.in))
		if tc.wantErr {
			if !errors.Is(err, ErrBadPayload) {
				t.Fatalf("ParsePayload(%q): expected ErrBadPayload, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParsePayload(%q) = %q,%v; want %q", tc.in, got, err, tc.want)
		}
	}
}
