package domain

import (
	"strings"
	"time"
)

// Move - жест игрока или ход компьютера
type Move string

const (
	MoveNone     Move = "none"
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Moves lists the valid moves in a fixed order (used for random sampling).
var Moves = [3]Move{MoveRock, MovePaper, MoveScissors}

// ParseMove converts a classifier label ("Rock", "paper", " SCISSORS ") to a Move.
// Anything outside the three moves is rejected.
func ParseMove(label string) (Move, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "rock":
		return MoveRock, true
	case "paper":
		return MovePaper, true
	case "scissors":
		return MoveScissors, true
	default:
		return MoveNone, false
	}
}

func (m Move) Valid() bool {
	return m == MoveRock || m == MovePaper || m == MoveScissors
}

// Label returns the classifier spelling ("Rock").
func (m Move) Label() string {
	switch m {
	case MoveRock:
		return "Rock"
	case MovePaper:
		return "Paper"
	case MoveScissors:
		return "Scissors"
	default:
		return ""
	}
}

// Glyph - иконка хода для UI, "?" если хода нет
func (m Move) Glyph() string {
	switch m {
	case MoveRock:
		return "✊"
	case MovePaper:
		return "✋"
	case MoveScissors:
		return "✌️"
	default:
		return GlyphPlaceholder
	}
}

const GlyphPlaceholder = "?"

// Outcome - результат раунда
type Outcome string

const (
	OutcomePlayerWin   Outcome = "player"
	OutcomeOpponentWin Outcome = "opponent"
	OutcomeTie         Outcome = "tie"
)

// Side is a scoreboard column.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Credited returns the side the outcome scores for; false for a tie.
func (o Outcome) Credited() (Side, bool) {
	switch o {
	case OutcomePlayerWin:
		return SidePlayer, true
	case OutcomeOpponentWin:
		return SideOpponent, true
	default:
		return "", false
	}
}

// RoundRecord - запись сыгранного раунда, после создания не меняется
type RoundRecord struct {
	Round         int       `json:"round"`
	PlayerMove    Move      `json:"player_move"`
	OpponentMove  Move      `json:"opponent_move"`
	Outcome       Outcome   `json:"outcome"`
	Description   string    `json:"description"`
	PlayerGlyph   string    `json:"player_glyph"`
	OpponentGlyph string    `json:"opponent_glyph"`
	ResolvedAt    time.Time `json:"resolved_at"`
}

// Score - счёт матча
type Score struct {
	Player   int `json:"player"`
	Opponent int `json:"opponent"`
}

// Winner of a finished match: "player", "opponent" or "draw".
func (s Score) Winner() string {
	switch {
	case s.Player > s.Opponent:
		return string(SidePlayer)
	case s.Opponent > s.Player:
		return string(SideOpponent)
	default:
		return "draw"
	}
}
