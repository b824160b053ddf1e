package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gesture_rps/internal/domain"
	"gesture_rps/internal/gesture"
	"gesture_rps/internal/service"

	"github.com/gorilla/websocket"
	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	redisAddr    string
	redisChannel string
	sendInterval time.Duration
)

func init() {
	sendCmd.Flags().StringVar(&redisAddr, "redis", "", "publish via redis at host:port instead of the websocket")
	sendCmd.Flags().StringVar(&redisChannel, "channel", gesture.EventName, "redis channel")
	sendCmd.Flags().DurationVar(&sendInterval, "interval", 0, "pause between gestures")
}

var sendCmd = &cobra.Command{
	Use:   "send <gesture>...",
	Short: "Send one or more gestures (Rock, Paper, Scissors)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	labels, err := normalize(args)
	if err != nil {
		return err
	}
	args = labels

	ctx := cmd.Context()
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer client.Close()
		return eachGesture(ctx, args, func(label string) error {
			return gesture.Publish(ctx, client, redisChannel, label)
		}, cmd)
	}

	conn, err := dial(ctx, "/ws/gesture")
	if err != nil {
		return err
	}
	defer conn.Close()

	return eachGesture(ctx, args, func(label string) error {
		frame := gesture.Payload{Type: gesture.EventName, Gesture: label}
		if err := conn.WriteJSON(frame); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, reply, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read ack: %w", err)
		}
		cmd.Printf("%s -> %s\n", label, reply)
		return nil
	}, cmd)
}

// normalize validates labels and spells them the way the classifier does ("rock" -> "Rock").
func normalize(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, label := range args {
		move, ok := domain.ParseMove(label)
		if !ok {
			return nil, fmt.Errorf("unknown gesture %q", label)
		}
		out = append(out, move.Label())
	}
	return out, nil
}

func eachGesture(ctx context.Context, labels []string, send func(string) error, cmd *cobra.Command) error {
	for i, label := range labels {
		if i > 0 && sendInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sendInterval):
			}
		}
		if err := send(label); err != nil {
			return err
		}
		if redisAddr != "" {
			cmd.Printf("%s -> published\n", label)
		}
	}
	return nil
}

func dial(ctx context.Context, path string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: serverAddr, Path: path}
	if tok, err := feedToken(); err != nil {
		return nil, err
	} else if tok != "" {
		u.RawQuery = url.Values{"token": {tok}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Path, err)
	}
	return conn, nil
}

// feedToken is empty when no secret is configured.
func feedToken() (string, error) {
	iss := service.NewTokenIssuer(jwtSecret)
	if !iss.Enabled() {
		return "", nil
	}
	return iss.Generate(feedName, service.FeedTokenTTL)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a match (POST /api/v1/match/start)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
			"http://"+serverAddr+"/api/v1/match/start", nil)
		if err != nil {
			return err
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return fmt.Errorf("start match: %w", err)
		}
		defer res.Body.Close()

		var body map[string]any
		_ = json.NewDecoder(res.Body).Decode(&body)
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("start match: %s: %v", res.Status, body["error"])
		}
		cmd.Printf("match started: round %v\n", body["round"])
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a feed token for --feed signed with --secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jwtSecret == "" {
			return fmt.Errorf("no secret: set JWT_SECRET or --secret")
		}
		tok, err := feedToken()
		if err != nil {
			return err
		}
		cmd.Println(tok)
		return nil
	},
}
