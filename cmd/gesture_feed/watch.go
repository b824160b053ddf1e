package main

import (
	"encoding/json"
	"fmt"

	"gesture_rps/internal/match"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print presentation snapshots as the match advances",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

type stateFrame struct {
	Type    string         `json:"type"`
	Payload match.Snapshot `json:"payload"`
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	conn, err := dial(ctx, "/ws")
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var f stateFrame
		if json.Unmarshal(raw, &f) != nil || f.Type != "state" {
			continue
		}
		cmd.Println(formatSnapshot(f.Payload))
	}
}

func formatSnapshot(s match.Snapshot) string {
	line := fmt.Sprintf("[%s] round %d/%d  %d:%d  %s vs %s",
		s.Phase, s.Round, s.MaxRounds, s.Score.Player, s.Score.Opponent,
		s.PlayerGlyph, s.OpponentGlyph)
	if s.OutcomeDescription != "" {
		line += "  " + s.OutcomeDescription
	}
	if s.Winner != "" {
		line += "  winner: " + s.Winner
	}
	if !s.Connected {
		line += "  (no gesture feed)"
	}
	return line
}
