package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case []Room:
		o.printRooms(v)
	case Profile:
		o.printProfile(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Room response type (matches API)
type Room struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	CreatedAt   time.Time `json:"created_at"`
	Taken       []string  `json:"taken"`
	Available   []string  `json:"available"`
	Spectators  int       `json:"spectators"`
	Clients     int       `json:"clients"`
	MovesPlayed int       `json:"moves_played"`
	Full        bool      `json:"full"`
}

// Profile response type
type Profile struct {
	Key         string    `json:"key"`
	Kind        string    `json:"kind"`
	DisplayName string    `json:"display_name,omitempty"`
	Country     string    `json:"country,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s (%s)\n", r.ID, r.Label)
	fmt.Printf("Created: %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Taken: %s\n", seatList(r.Taken))
	fmt.Printf("Available: %s\n", seatList(r.Available))
	fmt.Printf("Spectators: %d\n", r.Spectators)
	fmt.Printf("Clients: %d\n", r.Clients)
	fmt.Printf("Moves: %d\n", r.MovesPlayed)
	if r.Full {
		fmt.Println("Room is full")
	}
}

func (o *Output) printRooms(rooms []Room) {
	if len(rooms) == 0 {
		fmt.Println("No rooms")
		return
	}

	fmt.Printf("Rooms (%d):\n", len(rooms))
	for _, r := range rooms {
		fullStr := ""
		if r.Full {
			fullStr = " [full]"
		}
		seats := len(r.Taken) + len(r.Available)
		fmt.Printf("  - %s (%s): %d/%d seats taken, %d clients%s\n",
			r.ID, r.Label, len(r.Taken), seats, r.Clients, fullStr)
	}
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("Profile: %s (%s)\n", p.Key, p.Kind)
	if p.DisplayName != "" {
		fmt.Printf("Display Name: %s\n", p.DisplayName)
	}
	if p.Country != "" {
		fmt.Printf("Country: %s\n", p.Country)
	}
	fmt.Printf("Created: %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Last Seen: %s\n", p.LastSeenAt.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func seatList(seats []string) string {
	if len(seats) == 0 {
		return "none"
	}
	return strings.Join(seats, ", ")
}
