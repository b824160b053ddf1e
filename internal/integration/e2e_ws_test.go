package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gesture_rps/internal/config"
	"gesture_rps/internal/domain"
	"gesture_rps/internal/game"
	"gesture_rps/internal/gesture"
	httpserver "gesture_rps/internal/http"
	"gesture_rps/internal/match"
	"gesture_rps/internal/service"
	"gesture_rps/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type stage struct {
	url   string
	clock *clockwork.FakeClock
	orch  *match.Orchestrator
}

func newStage(t *testing.T, opponent ...domain.Move) *stage {
	t.Helper()
	return newStageWithConfig(t, &config.Config{
		JWTSecret:     secret,
		APIRateLimit:  1000,
		APIRateWindow: time.Minute,
	}, opponent...)
}

func newStageWithConfig(t *testing.T, cfg *config.Config, opponent ...domain.Move) *stage {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := clockwork.NewFakeClock()
	bus := gesture.NewBus(gesture.WithClock(clock))
	orch := match.New(bus,
		match.WithClock(clock),
		match.WithPicker(game.NewSequencePicker(opponent...)),
	)
	hub := ws.NewHub(orch)
	orch.Observe(hub.Broadcast)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = orch.Run(ctx)
	}()

	r := httpserver.NewRouter(httpserver.Deps{Config: cfg, Match: orch, Bus: bus, Hub: hub, Version: "test"})
	ts := httptest.NewServer(r)

	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})

	return &stage{url: ts.URL, clock: clock, orch: orch}
}

func (s *stage) wsURL(path string) string {
	return strings.Replace(s.url, "http", "ws", 1) + path
}

func (s *stage) waitPhase(t *testing.T, p match.Phase) {
	t.Helper()
	require.Eventually(t, func() bool { return s.orch.Snapshot().Phase == p },
		2*time.Second, 5*time.Millisecond, "waiting for %s", p)
}

func TestE2E_FeedRequiresToken(t *testing.T) {
	s := newStage(t, domain.MoveRock)

	_, res, err := websocket.DefaultDialer.Dial(s.wsURL("/ws/gesture"), nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, err = http.Post(s.url+"/api/v1/gestures", "application/json", strings.NewReader(`{"gesture":"Rock"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestE2E_GestureIngestLimitedPerFeed(t *testing.T) {
	s := newStageWithConfig(t, &config.Config{
		JWTSecret:         secret,
		APIRateLimit:      1000,
		APIRateWindow:     time.Minute,
		GestureRateLimit:  2,
		GestureRateWindow: time.Minute,
	}, domain.MoveRock)

	iss := service.NewTokenIssuer(secret)
	camA, err := iss.Generate("camera-a", time.Minute)
	require.NoError(t, err)
	camB, err := iss.Generate("camera-b", time.Minute)
	require.NoError(t, err)

	post := func(tok string) int {
		req, err := http.NewRequest(http.MethodPost, s.url+"/api/v1/gestures", strings.NewReader(`{"gesture":"Rock"}`))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res.StatusCode
	}

	assert.Equal(t, http.StatusAccepted, post(camA))
	assert.Equal(t, http.StatusAccepted, post(camA))
	assert.Equal(t, http.StatusTooManyRequests, post(camA))
	assert.Equal(t, http.StatusAccepted, post(camB))
}

func TestE2E_WS_Match(t *testing.T) {
	s := newStage(t,
		domain.MoveScissors, domain.MoveScissors, domain.MoveRock, domain.MoveRock, domain.MoveRock)

	tok, err := service.NewTokenIssuer(secret).Generate("camera-1", time.Minute)
	require.NoError(t, err)

	view, _, err := websocket.DefaultDialer.Dial(s.wsURL("/ws"), nil)
	require.NoError(t, err)
	defer view.Close()

	feed, _, err := websocket.DefaultDialer.Dial(s.wsURL("/ws/gesture?token="+tok), nil)
	require.NoError(t, err)
	defer feed.Close()

	require.Eventually(t, func() bool { return s.orch.Snapshot().Connected }, 2*time.Second, 5*time.Millisecond)

	// single reader goroutine per connection
	states := make(chan match.Snapshot, 128)
	go func() {
		defer close(states)
		for {
			_, raw, err := view.ReadMessage()
			if err != nil {
				return
			}
			var frame struct {
				Type    string         `json:"type"`
				Payload match.Snapshot `json:"payload"`
			}
			if json.Unmarshal(raw, &frame) == nil && frame.Type == ws.MsgState {
				states <- frame.Payload
			}
		}
	}()
	go func() {
		for {
			if _, _, err := feed.ReadMessage(); err != nil {
				return
			}
		}
	}()

	res, err := http.Post(s.url+"/api/v1/match/start", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	for _, label := range []string{"Rock", "Paper", "Scissors", "Rock", "Paper"} {
		s.waitPhase(t, match.PhaseAwaitingPlayerMove)
		require.NoError(t, feed.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"gesture_detected","gesture":"`+label+`"}`)))

		s.waitPhase(t, match.PhaseAwaitingOpponentMove)
		s.clock.Advance(match.DefaultRevealDelay)

		s.waitPhase(t, match.PhaseReveal)
		s.clock.Advance(match.DefaultRevealHold)
	}
	s.waitPhase(t, match.PhaseMatchOver)

	// the presentation stream ends on the same final state
	var last match.Snapshot
	require.Eventually(t, func() bool {
		for {
			select {
			case snap := <-states:
				last = snap
			default:
				return last.Phase == match.PhaseMatchOver
			}
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, domain.Score{Player: 2, Opponent: 2}, last.Score)
	assert.Equal(t, "draw", last.Winner)
	require.Len(t, last.History, 5)

	want := []domain.Outcome{
		domain.OutcomePlayerWin, domain.OutcomeOpponentWin, domain.OutcomeOpponentWin,
		domain.OutcomeTie, domain.OutcomePlayerWin,
	}
	for i, rec := range last.History {
		assert.Equal(t, i+1, rec.Round)
		assert.Equal(t, want[i], rec.Outcome, "round %d", i+1)
	}
}
