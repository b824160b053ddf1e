// gesture_feed stands in for the vision classifier: it sends gestures to a
// running server over the feed websocket or redis, mints feed tokens and
// watches the presentation stream.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	jwtSecret  string
	feedName   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gesture_feed",
	Short: "Simulated gesture classifier for the rock/paper/scissors server",
	Long: `gesture_feed drives a running server without a camera.

Examples:
  # Start a match and play rock
  gesture_feed start
  gesture_feed send Rock

  # Publish through redis instead of the websocket
  gesture_feed send --redis localhost:6379 Paper

  # Print presentation state as it changes
  gesture_feed watch`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", envOr("GESTURE_SERVER", "127.0.0.1:8080"), "server host:port")
	rootCmd.PersistentFlags().StringVar(&jwtSecret, "secret", os.Getenv("JWT_SECRET"), "JWT secret used to mint a feed token")
	rootCmd.PersistentFlags().StringVar(&feedName, "feed", "gesture_feed", "feed name placed in the token subject")

	rootCmd.AddCommand(sendCmd, tokenCmd, watchCmd, startCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
