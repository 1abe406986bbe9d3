package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrAuthenticationRequired = errors.New("authentication required")

	// Seat errors
	ErrInvalidSeat = errors.New("invalid seat")
	ErrSeatTaken   = errors.New("seat is taken")

	// Room errors
	ErrInvalidRoomID = errors.New("invalid room id")
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomClosed    = errors.New("room is closed")
	ErrRoomNotEmpty  = errors.New("room is not empty")
	ErrDuplicateRoom = errors.New("room already exists")
	ErrRoomLimit     = errors.New("room limit reached")
	ErrForbidden     = errors.New("operation not permitted")

	// Move errors
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")
	ErrNotSeated   = errors.New("spectators cannot act")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
)
