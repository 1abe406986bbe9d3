package model

import "strings"

// Seat identifies a position at the table
type Seat string

const (
	SeatA Seat = "SEAT_A"
	SeatB Seat = "SEAT_B"
	SeatC Seat = "SEAT_C"
	SeatD Seat = "SEAT_D"

	// SeatSpectator is a watch-only attachment, never part of turn order
	SeatSpectator Seat = "SPECTATOR"
)

// PlayableSeats returns the seats that participate in turn order, in
// rotation order
func PlayableSeats() []Seat {
	return []Seat{SeatA, SeatB, SeatC, SeatD}
}

// IsPlayable reports whether the seat participates in turn order
func (s Seat) IsPlayable() bool {
	switch s {
	case SeatA, SeatB, SeatC, SeatD:
		return true
	default:
		return false
	}
}

// ParseSeat normalizes a wire seat token. An absent token means the caller
// did not ask for a seat and attaches as a spectator; an unrecognized token
// is refused rather than silently downgraded
func ParseSeat(raw string) (Seat, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SeatSpectator, nil
	}
	seat := Seat(strings.ToUpper(raw))
	if seat == SeatSpectator || seat.IsPlayable() {
		return seat, nil
	}
	return "", ErrInvalidSeat
}
