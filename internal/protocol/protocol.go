// Package protocol defines the websocket wire format: a type/payload
// envelope shared by everything a room says to its clients and everything
// clients say back
package protocol

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/netplay-go/internal/engine"
	"github.com/mcoot/netplay-go/internal/model"
)

// Message types clients send
const (
	TypeMove         = "move"
	TypeChat         = "chat"
	TypeRequestState = "request_state"
	TypeResign       = "resign"
)

// Message types the server sends
const (
	TypeState       = "state"
	TypeError       = "error"
	TypeResigned    = "resigned"
	TypeRoomsUpdate = "rooms_update"
)

// Envelope wraps every message in both directions
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ChatPayload is the inbound chat message body
type ChatPayload struct {
	Text string `json:"text"`
}

// ChatBroadcast is the outbound chat message body
type ChatBroadcast struct {
	User string     `json:"user"`
	Seat model.Seat `json:"seat"`
	Text string     `json:"text"`
	TS   time.Time  `json:"ts"`
}

// RoomSummary is the wire shape of a room's occupancy
type RoomSummary struct {
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

// SummaryFromModel converts a room summary to its wire shape
func SummaryFromModel(s model.RoomSummary) RoomSummary {
	return RoomSummary{
		ID:          string(s.ID),
		Label:       s.Label,
		CreatedAt:   s.CreatedAt,
		Taken:       lo.Map(s.Taken, func(seat model.Seat, _ int) string { return string(seat) }),
		Available:   lo.Map(s.Available, func(seat model.Seat, _ int) string { return string(seat) }),
		Spectators:  s.Spectators,
		Clients:     s.Clients,
		MovesPlayed: s.MovesPlayed,
		Full:        s.Full,
	}
}

// encode builds an envelope frame. The payload shapes in this package are
// all marshal-safe, so errors cannot occur for well-formed inputs
func encode(msgType string, payload any) []byte {
	body, _ := json.Marshal(payload)
	frame, _ := json.Marshal(Envelope{Type: msgType, Payload: body})
	return frame
}

// State builds a state frame carrying a snapshot
func State(snap engine.Snapshot) []byte {
	return encode(TypeState, snap)
}

// Error builds an error frame for a single client
func Error(message string) []byte {
	return encode(TypeError, message)
}

// Chat builds a chat broadcast frame
func Chat(user string, seat model.Seat, text string, ts time.Time) []byte {
	return encode(TypeChat, ChatBroadcast{User: user, Seat: seat, Text: text, TS: ts})
}

// Resigned builds the acknowledgement sent to a resigning player
func Resigned(seat model.Seat) []byte {
	return encode(TypeResigned, seat)
}

// RoomsUpdate builds an occupancy update frame from registry summaries
func RoomsUpdate(summaries []model.RoomSummary) []byte {
	return encode(TypeRoomsUpdate, lo.Map(summaries, func(s model.RoomSummary, _ int) RoomSummary {
		return SummaryFromModel(s)
	}))
}
