// Package match runs a best-of-five rock/paper/scissors match against a
// random opponent, with the player's moves arriving as gesture events.
//
// All match state is owned by a single loop goroutine (Run). Commands,
// gestures, connectivity changes and timer callbacks are queued to it and
// handled one at a time.
package match

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gesture_rps/internal/domain"
	"gesture_rps/internal/game"
	"gesture_rps/internal/gesture"
	"gesture_rps/internal/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	Rounds = 5

	DefaultRevealDelay = 3 * time.Second
	DefaultRevealHold  = 2500 * time.Millisecond

	queueSize = 64
)

var (
	ErrMatchInProgress = errors.New("match already in progress")
	ErrStopped         = errors.New("orchestrator stopped")
	ErrAlreadyRunning  = errors.New("orchestrator already running")
)

// Timings of a match. PlayerMoveTimeout of zero waits for a gesture forever.
type Timings struct {
	RevealDelay       time.Duration
	RevealHold        time.Duration
	PlayerMoveTimeout time.Duration
}

func DefaultTimings() Timings {
	return Timings{RevealDelay: DefaultRevealDelay, RevealHold: DefaultRevealHold}
}

type GestureResult string

const (
	GestureAccepted GestureResult = "accepted"
	GestureIgnored  GestureResult = "ignored"
	GestureRejected GestureResult = "rejected"
)

type eventKind int

const (
	evStart eventKind = iota
	evReset
	evGesture
	evStatus
	evTimer
)

type timerKind string

const (
	timerPlayerMove  timerKind = "player_move_timeout"
	timerRevealDelay timerKind = "reveal_delay"
	timerRevealHold  timerKind = "reveal_hold"
)

type reply struct {
	result GestureResult
	err    error
}

type event struct {
	kind      eventKind
	label     string
	source    string
	connected bool

	// timer events carry the phase and epoch they were scheduled in
	timer timerKind
	phase Phase
	epoch uint64

	reply chan reply
}

type Orchestrator struct {
	timings Timings
	clock   clockwork.Clock
	picker  game.Picker
	channel gesture.Channel
	log     *slog.Logger

	events  chan event
	done    chan struct{}
	running atomic.Bool

	// loop-owned state
	phase        Phase
	round        int
	matchID      string
	playerMove   domain.Move
	opponentMove domain.Move
	description  string
	connected    bool
	epoch        uint64
	version      uint64
	timer        clockwork.Timer
	score        *game.Scoreboard
	history      *game.HistoryLog

	snapMu sync.RWMutex
	snap   Snapshot

	obsMu     sync.RWMutex
	observers map[int]Observer
	obsSeq    int
}

type Option func(*Orchestrator)

func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithPicker(p game.Picker) Option {
	return func(o *Orchestrator) { o.picker = p }
}

func WithTimings(t Timings) Option {
	return func(o *Orchestrator) { o.timings = t }
}

// New builds an idle orchestrator reading gestures from ch. Nothing happens
// until Run is started.
func New(ch gesture.Channel, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		timings:      DefaultTimings(),
		clock:        clockwork.NewRealClock(),
		picker:       game.RandomPicker{},
		channel:      ch,
		log:          logger.With("component", "orchestrator"),
		events:       make(chan event, queueSize),
		done:         make(chan struct{}),
		phase:        PhaseIdle,
		round:        1,
		playerMove:   domain.MoveNone,
		opponentMove: domain.MoveNone,
		score:        game.NewScoreboard(),
		history:      game.NewHistoryLog(),
		observers:    make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.snap = o.build()
	return o
}

// Run subscribes to the gesture channel and processes events until ctx is
// cancelled. An orchestrator runs at most once.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(o.done)
	defer o.stopTimer()

	unsubscribe := o.channel.Subscribe(subscriber{o})
	defer unsubscribe()

	o.connected = o.channel.Connected()
	o.publish()
	o.log.Info("orchestrator started", "connected", o.connected)

	for {
		select {
		case <-ctx.Done():
			o.log.Info("orchestrator stopped")
			return nil
		case ev := <-o.events:
			o.handle(ev)
		}
	}
}

// Start begins a new match. Only valid while idle.
func (o *Orchestrator) Start(ctx context.Context) error {
	_, err := o.dispatch(ctx, event{kind: evStart})
	return err
}

// Reset abandons whatever is going on and returns to idle.
func (o *Orchestrator) Reset(ctx context.Context) error {
	_, err := o.dispatch(ctx, event{kind: evReset})
	return err
}

// HandleGesture feeds one gesture label and reports what the machine did with it.
func (o *Orchestrator) HandleGesture(ctx context.Context, label, source string) (GestureResult, error) {
	return o.dispatch(ctx, event{kind: evGesture, label: label, source: source})
}

// Snapshot returns the state as of the last transition.
func (o *Orchestrator) Snapshot() Snapshot {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snap.clone()
}

// Observe registers fn for every published snapshot.
func (o *Orchestrator) Observe(fn Observer) (cancel func()) {
	o.obsMu.Lock()
	o.obsSeq++
	id := o.obsSeq
	o.observers[id] = fn
	o.obsMu.Unlock()

	return func() {
		o.obsMu.Lock()
		delete(o.observers, id)
		o.obsMu.Unlock()
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, ev event) (GestureResult, error) {
	ev.reply = make(chan reply, 1)

	select {
	case o.events <- ev:
	case <-o.done:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-ev.reply:
		return r.result, r.err
	case <-o.done:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// post queues an event without waiting for it to be handled.
func (o *Orchestrator) post(ev event) {
	select {
	case o.events <- ev:
	case <-o.done:
	}
}

func (o *Orchestrator) handle(ev event) {
	var r reply

	switch ev.kind {
	case evStart:
		r.err = o.start()
	case evReset:
		o.reset()
	case evGesture:
		r.result = o.gesture(ev.label, ev.source)
	case evStatus:
		// status events can arrive out of order; the channel has the current answer
		o.setConnected(o.channel.Connected())
	case evTimer:
		o.fire(ev)
	}

	if ev.reply != nil {
		ev.reply <- r
	}
}

func (o *Orchestrator) start() error {
	if o.phase != PhaseIdle {
		return ErrMatchInProgress
	}

	o.score.Reset()
	o.history.Reset()
	o.matchID = uuid.NewString()
	o.round = 1

	o.log.Info("match started", "match_id", o.matchID)
	o.enterAwaitingPlayerMove()
	return nil
}

func (o *Orchestrator) reset() {
	from := o.phase
	o.transition(PhaseIdle)

	o.score.Reset()
	o.history.Reset()
	o.matchID = ""
	o.round = 1
	o.playerMove = domain.MoveNone
	o.opponentMove = domain.MoveNone
	o.description = ""

	o.log.Info("match reset", "from", from)
	o.publish()
}

func (o *Orchestrator) gesture(label, source string) GestureResult {
	move, ok := domain.ParseMove(label)
	if !ok {
		o.log.Warn("rejected malformed gesture", "label", label, "source", source)
		Gestures.WithLabelValues(string(GestureRejected)).Inc()
		return GestureRejected
	}

	// check and transition happen in the same loop step; later gestures see the new phase
	if o.phase != PhaseAwaitingPlayerMove {
		o.log.Debug("gesture ignored", "move", move, "phase", o.phase, "source", source)
		Gestures.WithLabelValues(string(GestureIgnored)).Inc()
		return GestureIgnored
	}

	o.playerMove = move
	Gestures.WithLabelValues(string(GestureAccepted)).Inc()
	o.log.Info("gesture accepted", "match_id", o.matchID, "round", o.round, "move", move, "source", source)

	o.enterAwaitingOpponentMove()
	return GestureAccepted
}

func (o *Orchestrator) fire(ev event) {
	if ev.phase != o.phase || ev.epoch != o.epoch {
		o.log.Debug("stale timer dropped", "timer", ev.timer, "scheduled_phase", ev.phase, "phase", o.phase)
		return
	}

	switch ev.timer {
	case timerPlayerMove:
		o.log.Info("no gesture before timeout", "match_id", o.matchID, "round", o.round)
		o.enterAwaitingOpponentMove()
	case timerRevealDelay:
		o.resolve()
	case timerRevealHold:
		o.advance()
	}
}

func (o *Orchestrator) enterAwaitingPlayerMove() {
	o.transition(PhaseAwaitingPlayerMove)
	o.playerMove = domain.MoveNone
	o.opponentMove = domain.MoveNone
	o.description = ""

	if o.timings.PlayerMoveTimeout > 0 {
		o.schedule(timerPlayerMove, o.timings.PlayerMoveTimeout)
	}
	o.publish()
}

func (o *Orchestrator) enterAwaitingOpponentMove() {
	o.transition(PhaseAwaitingOpponentMove)
	o.opponentMove = o.picker.Pick()
	o.schedule(timerRevealDelay, o.timings.RevealDelay)
	o.publish()
}

func (o *Orchestrator) resolve() {
	outcome, desc := game.Resolve(o.playerMove, o.opponentMove)

	rec := domain.RoundRecord{
		Round:         o.round,
		PlayerMove:    o.playerMove,
		OpponentMove:  o.opponentMove,
		Outcome:       outcome,
		Description:   desc,
		PlayerGlyph:   o.playerMove.Glyph(),
		OpponentGlyph: o.opponentMove.Glyph(),
		ResolvedAt:    o.clock.Now(),
	}
	if err := o.history.Append(rec); err != nil {
		// only reachable if the loop itself is broken
		o.log.Error("history append failed", "match_id", o.matchID, "error", err)
	} else if side, ok := outcome.Credited(); ok {
		o.score.Credit(side)
	}

	o.description = desc
	RoundsResolved.WithLabelValues(string(outcome)).Inc()
	o.log.Info("round resolved",
		"match_id", o.matchID,
		"round", o.round,
		"player", o.playerMove,
		"opponent", o.opponentMove,
		"outcome", outcome,
	)

	o.transition(PhaseReveal)
	o.schedule(timerRevealHold, o.timings.RevealHold)
	o.publish()
}

func (o *Orchestrator) advance() {
	if o.round >= Rounds {
		o.transition(PhaseMatchOver)
		score := o.score.Score()
		MatchesCompleted.WithLabelValues(score.Winner()).Inc()
		o.log.Info("match over", "match_id", o.matchID, "player", score.Player, "opponent", score.Opponent)
		o.publish()
		return
	}

	o.round++
	o.enterAwaitingPlayerMove()
}

// transition moves to phase `to`, cancelling whatever timer the old phase had.
func (o *Orchestrator) transition(to Phase) {
	from := o.phase
	o.stopTimer()
	o.phase = to
	o.epoch++
	PhaseTransitions.WithLabelValues(string(from), string(to)).Inc()
	o.log.Debug("phase transition", "from", from, "to", to, "round", o.round)
}

func (o *Orchestrator) schedule(kind timerKind, d time.Duration) {
	phase, epoch := o.phase, o.epoch
	o.timer = o.clock.AfterFunc(d, func() {
		o.post(event{kind: evTimer, timer: kind, phase: phase, epoch: epoch})
	})
}

func (o *Orchestrator) stopTimer() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) setConnected(c bool) {
	if c == o.connected {
		return
	}
	o.connected = c
	o.log.Info("gesture channel status", "connected", c)
	o.publish()
}

func (o *Orchestrator) build() Snapshot {
	s := Snapshot{
		MatchID:            o.matchID,
		Phase:              o.phase,
		Round:              o.round,
		MaxRounds:          Rounds,
		Score:              o.score.Score(),
		PlayerMove:         o.playerMove,
		PlayerGlyph:        o.playerMove.Glyph(),
		OpponentMove:       domain.MoveNone,
		OpponentGlyph:      domain.GlyphPlaceholder,
		OutcomeDescription: o.description,
		History:            o.history.Records(),
		Connected:          o.connected,
		Version:            o.version,
	}

	// the opponent's pick stays hidden until the reveal
	if o.phase == PhaseReveal || o.phase == PhaseMatchOver {
		s.OpponentMove = o.opponentMove
		s.OpponentGlyph = o.opponentMove.Glyph()
	}
	if o.phase == PhaseMatchOver {
		s.Winner = s.Score.Winner()
	}
	return s
}

func (o *Orchestrator) publish() {
	o.version++
	snap := o.build()

	o.snapMu.Lock()
	o.snap = snap
	o.snapMu.Unlock()

	if o.connected {
		FeedConnected.Set(1)
	} else {
		FeedConnected.Set(0)
	}

	o.obsMu.RLock()
	obs := make([]Observer, 0, len(o.observers))
	for _, fn := range o.observers {
		obs = append(obs, fn)
	}
	o.obsMu.RUnlock()

	for _, fn := range obs {
		fn(snap.clone())
	}
}

// subscriber adapts the orchestrator to gesture.Subscriber without exposing
// the callbacks on Orchestrator itself.
type subscriber struct{ o *Orchestrator }

func (s subscriber) OnGesture(ev gesture.Event) {
	select {
	case s.o.events <- event{kind: evGesture, label: ev.Label, source: ev.Source}:
	case <-s.o.done:
	default:
		s.o.log.Warn("event queue full, gesture dropped", "label", ev.Label)
	}
}

func (s subscriber) OnStatus(connected bool) {
	s.o.post(event{kind: evStatus, connected: connected})
}
