package game

import (
	"sync"

	"gesture_rps/internal/domain"
)

// Scoreboard counts round wins per side. Counters only go up until Reset.
type Scoreboard struct {
	score domain.Score
	mu    sync.RWMutex
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{}
}

// Credit adds one win to side.
func (s *Scoreboard) Credit(side domain.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch side {
	case domain.SidePlayer:
		s.score.Player++
	case domain.SideOpponent:
		s.score.Opponent++
	}
}

func (s *Scoreboard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score = domain.Score{}
}

func (s *Scoreboard) Score() domain.Score {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}
