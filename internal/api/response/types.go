package response

import (
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/netplay-go/internal/model"
)

// Room represents a room's occupancy summary in API responses
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

// RoomFromModel converts a model.RoomSummary to a response Room
func RoomFromModel(s model.RoomSummary) Room {
	return Room{
		ID:        string(s.ID),
		Label:     s.Label,
		CreatedAt: s.CreatedAt,
		Taken: lo.Map(s.Taken, func(seat model.Seat, _ int) string {
			return string(seat)
		}),
		Available: lo.Map(s.Available, func(seat model.Seat, _ int) string {
			return string(seat)
		}),
		Spectators:  s.Spectators,
		Clients:     s.Clients,
		MovesPlayed: s.MovesPlayed,
		Full:        s.Full,
	}
}

// RoomsFromModel converts a summary list, preserving order
func RoomsFromModel(summaries []model.RoomSummary) []Room {
	return lo.Map(summaries, func(s model.RoomSummary, _ int) Room {
		return RoomFromModel(s)
	})
}

// Profile represents a stored identity profile in API responses
type Profile struct {
	Key         string    `json:"key"`
	Kind        string    `json:"kind"`
	DisplayName string    `json:"display_name,omitempty"`
	Country     string    `json:"country,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// ProfileFromModel converts a model.Profile to a response Profile
func ProfileFromModel(p *model.Profile) Profile {
	return Profile{
		Key:         p.Key,
		Kind:        string(p.Kind),
		DisplayName: p.DisplayName,
		Country:     p.Country,
		CreatedAt:   p.CreatedAt,
		LastSeenAt:  p.LastSeenAt,
	}
}
