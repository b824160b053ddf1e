package game

import (
	"gesture_rps/internal/domain"
)

const (
	DescNoGesture  = "no gesture detected."
	DescTie        = "round tied."
	DescNoOpponent = "opponent made no move."
)

// rule: кто кого бьёт и как это звучит
type rule struct {
	beats domain.Move
	verb  string
}

var rules = map[domain.Move]rule{
	domain.MoveRock:     {beats: domain.MoveScissors, verb: "crushes"},
	domain.MovePaper:    {beats: domain.MoveRock, verb: "covers"},
	domain.MoveScissors: {beats: domain.MovePaper, verb: "cuts"},
}

// Resolve decides a round between the player's gesture and the opponent's move.
// player may be domain.MoveNone when no gesture was captured. A missing
// player move loses even if the opponent has none either.
func Resolve(player, opponent domain.Move) (domain.Outcome, string) {
	if !player.Valid() {
		return domain.OutcomeOpponentWin, DescNoGesture
	}
	if !opponent.Valid() {
		return domain.OutcomePlayerWin, DescNoOpponent
	}

	if player == opponent {
		return domain.OutcomeTie, DescTie
	}

	if r := rules[player]; r.beats == opponent {
		return domain.OutcomePlayerWin, describe(player, r)
	}

	return domain.OutcomeOpponentWin, describe(opponent, rules[opponent])
}

func describe(winner domain.Move, r rule) string {
	return string(winner) + " " + r.verb + " " + string(r.beats) + "."
}
