package model

import (
	"regexp"
	"strings"
	"time"
)

// RoomID is the slug identifying a room, e.g. "main" or "room-x7k2qp"
type RoomID string

// DefaultRoomID is the always-present room that unroutable connections
// fall back to. It cannot be deleted
const DefaultRoomID RoomID = "main"

// MaxRooms caps how many rooms may exist at once, the default room included
const MaxRooms = 10

var roomSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyRoomID lowercases the input and collapses every run of
// non-alphanumeric characters into a single hyphen. Returns "" when
// nothing usable remains
func SlugifyRoomID(raw string) RoomID {
	slug := roomSlugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
	return RoomID(strings.Trim(slug, "-"))
}

// NormalizeRoomID slugifies the input, falling back to the default room
// when the result is empty
func NormalizeRoomID(raw string) RoomID {
	if slug := SlugifyRoomID(raw); slug != "" {
		return slug
	}
	return DefaultRoomID
}

// RoomSummary is the public occupancy view of a room, recomputed from live
// connections whenever it is requested or broadcast
type RoomSummary struct {
	ID          RoomID
	Label       string
	CreatedAt   time.Time
	Taken       []Seat
	Available   []Seat
	Spectators  int
	Clients     int
	MovesPlayed int
	Full        bool
}
