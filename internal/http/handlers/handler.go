package handlers

import (
	"context"

	"gesture_rps/internal/match"
)

// MatchController is the part of the orchestrator the HTTP surface drives.
type MatchController interface {
	Start(ctx context.Context) error
	Reset(ctx context.Context) error
	Snapshot() match.Snapshot
}

// GesturePublisher accepts gestures from HTTP feeds.
type GesturePublisher interface {
	Publish(label, source string) bool
}

type Handler struct {
	Match    MatchController
	Gestures GesturePublisher
}

func NewHandler(m MatchController, g GesturePublisher) *Handler {
	return &Handler{Match: m, Gestures: g}
}
