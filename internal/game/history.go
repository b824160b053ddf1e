package game

import (
	"errors"
	"fmt"
	"sync"

	"gesture_rps/internal/domain"
)

var ErrOutOfOrder = errors.New("round out of order")

// HistoryLog is the append-only list of resolved rounds, oldest first.
type HistoryLog struct {
	records []domain.RoundRecord
	mu      sync.RWMutex
}

func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

// Append stores rec; rec.Round must be exactly Len()+1.
func (h *HistoryLog) Append(rec domain.RoundRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if want := len(h.records) + 1; rec.Round != want {
		return fmt.Errorf("%w: got round %d, want %d", ErrOutOfOrder, rec.Round, want)
	}

	h.records = append(h.records, rec)
	return nil
}

func (h *HistoryLog) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Records returns a copy; callers cannot modify the log through it.
func (h *HistoryLog) Records() []domain.RoundRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.RoundRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Tally counts wins per side and ties across the log.
func (h *HistoryLog) Tally() (score domain.Score, ties int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, rec := range h.records {
		side, ok := rec.Outcome.Credited()
		switch {
		case !ok:
			ties++
		case side == domain.SidePlayer:
			score.Player++
		default:
			score.Opponent++
		}
	}
	return score, ties
}
