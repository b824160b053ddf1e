package main

import (
	"testing"

	"gesture_rps/internal/domain"
	"gesture_rps/internal/match"

	"github.com/stretchr/testify/assert"
)

func TestFormatSnapshot(t *testing.T) {
	s := match.Snapshot{
		Phase:              match.PhaseMatchOver,
		Round:              5,
		MaxRounds:          5,
		Score:              domain.Score{Player: 3, Opponent: 1},
		PlayerGlyph:        "✊",
		OpponentGlyph:      "✌️",
		OutcomeDescription: "rock crushes scissors.",
		Winner:             "player",
		Connected:          true,
	}
	assert.Equal(t, "[match_over] round 5/5  3:1  ✊ vs ✌️  rock crushes scissors.  winner: player", formatSnapshot(s))

	s = match.Snapshot{Phase: match.PhaseIdle, MaxRounds: 5, PlayerGlyph: "?", OpponentGlyph: "?"}
	assert.Equal(t, "[idle] round 0/5  0:0  ? vs ?  (no gesture feed)", formatSnapshot(s))
}
