package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		room       string
		seat       string
		user       string
		country    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream realtime frames from a room",
		Long: `Connect to the server's websocket endpoint and stream frames in real-time.

Frame types include:
  - state: Full game state after a move, resignation or reset
  - chat: Chat message from a player or spectator
  - rooms_update: Room occupancy changed
  - resigned: A seat resigned
  - error: The server refused something this session sent

Without --seat the connection attaches as a spectator. Authentication uses
the bearer token when one is set, the guest name otherwise.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(room, seat, user, country, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&room, "room", "", "Room id (default: the default room)")
	cmd.Flags().StringVar(&seat, "seat", "", "Seat to claim (default: spectate)")
	cmd.Flags().StringVar(&user, "user", "", "Guest name (used when no token is set)")
	cmd.Flags().StringVar(&country, "country", "", "Two-letter country code to record")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output frames as JSON lines")

	return cmd
}

// Frame mirrors the websocket envelope
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func watchRoom(room, seat, user, country string, jsonOutput bool) error {
	u, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	q := u.Query()
	if room != "" {
		q.Set("room", room)
	}
	if seat != "" {
		q.Set("seat", seat)
	}
	if user != "" {
		q.Set("user", user)
	}
	if country != "" {
		q.Set("country", country)
	}
	if cfg.Token != "" {
		q.Set("token", cfg.Token)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		// A refused handshake carries the API error envelope
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			var errResp ErrorResponse
			if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error.Code != "" {
				return fmt.Errorf("%s", errResp.Error.String())
			}
			return fmt.Errorf("connection refused: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Handle interrupt: a close frame lets the server tear the session down
	// cleanly before the socket drops
	interrupted := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(interrupted)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if !jsonOutput {
		target := room
		if target == "" {
			target = "the default room"
		}
		fmt.Printf("Connected to %s\n", target)
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-interrupted:
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			default:
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		printFrame(message, jsonOutput)
	}
}

func printFrame(message []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(message))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		fmt.Printf("[%s] unreadable frame: %s\n", timestamp, message)
		return
	}

	fmt.Printf("[%s] %s: %s\n", timestamp, frame.Type, frameSummary(frame))
}

// frameSummary renders a one-line description of a frame's payload
func frameSummary(frame Frame) string {
	switch frame.Type {
	case "state":
		var state struct {
			Turn string `json:"turn"`
		}
		if err := json.Unmarshal(frame.Payload, &state); err == nil && state.Turn != "" {
			return fmt.Sprintf("turn=%s", state.Turn)
		}

	case "chat":
		var chat struct {
			User string `json:"user"`
			Seat string `json:"seat"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(frame.Payload, &chat); err == nil {
			return fmt.Sprintf("%s (%s): %s", chat.User, chat.Seat, chat.Text)
		}

	case "error":
		var message string
		if err := json.Unmarshal(frame.Payload, &message); err == nil {
			return message
		}

	case "resigned":
		var seat string
		if err := json.Unmarshal(frame.Payload, &seat); err == nil {
			return seat
		}

	case "rooms_update":
		var rooms []Room
		if err := json.Unmarshal(frame.Payload, &rooms); err == nil {
			parts := make([]string, 0, len(rooms))
			for _, r := range rooms {
				parts = append(parts, fmt.Sprintf("%s %d/%d", r.ID, len(r.Taken), len(r.Taken)+len(r.Available)))
			}
			return strings.Join(parts, ", ")
		}
	}

	// Fallback: raw payload, truncated for display
	display := string(frame.Payload)
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	return strings.ReplaceAll(display, "\n", " ")
}

// websocketURL converts the configured server URL to its websocket equivalent
func websocketURL(serverURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q in server URL", u.Scheme)
	}
	u.Path = "/ws"

	return u, nil
}
