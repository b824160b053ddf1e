package game

import (
	"crypto/rand"
	"math/big"

	"gesture_rps/internal/domain"
)

// Picker chooses the opponent's move.
type Picker interface {
	Pick() domain.Move
}

// RandomPicker samples uniformly from the three moves.
type RandomPicker struct{}

func (RandomPicker) Pick() domain.Move {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(domain.Moves))))
	if err != nil {
		return domain.Moves[0]
	}
	return domain.Moves[n.Int64()]
}

// SequencePicker replays a fixed list of moves, cycling when exhausted.
type SequencePicker struct {
	moves []domain.Move
	next  int
}

// NewSequencePicker keeps only the valid moves of the list.
func NewSequencePicker(moves ...domain.Move) *SequencePicker {
	valid := make([]domain.Move, 0, len(moves))
	for _, m := range moves {
		if m.Valid() {
			valid = append(valid, m)
		}
	}
	return &SequencePicker{moves: valid}
}

func (p *SequencePicker) Pick() domain.Move {
	if len(p.moves) == 0 {
		return domain.MoveRock
	}
	m := p.moves[p.next%len(p.moves)]
	p.next++
	return m
}
