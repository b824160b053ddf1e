package match

import (
	"gesture_rps/internal/domain"
)

type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseAwaitingPlayerMove   Phase = "awaiting_player_move"
	PhaseAwaitingOpponentMove Phase = "awaiting_opponent_move"
	PhaseReveal               Phase = "reveal"
	PhaseMatchOver            Phase = "match_over"
)

// Snapshot is an immutable copy of match state handed to the presentation layer.
type Snapshot struct {
	MatchID            string               `json:"match_id,omitempty"`
	Phase              Phase                `json:"phase"`
	Round              int                  `json:"round"`
	MaxRounds          int                  `json:"max_rounds"`
	Score              domain.Score         `json:"score"`
	PlayerMove         domain.Move          `json:"player_move"`
	PlayerGlyph        string               `json:"player_glyph"`
	OpponentMove       domain.Move          `json:"opponent_move"`
	OpponentGlyph      string               `json:"opponent_glyph"`
	OutcomeDescription string               `json:"outcome_description"`
	Winner             string               `json:"winner,omitempty"`
	History            []domain.RoundRecord `json:"history"`
	Connected          bool                 `json:"connected"`
	Version            uint64               `json:"version"`
}

func (s Snapshot) clone() Snapshot {
	h := make([]domain.RoundRecord, len(s.History))
	copy(h, s.History)
	s.History = h
	return s
}

// Observer is called from the orchestrator loop after every change. It must not block.
type Observer func(Snapshot)
