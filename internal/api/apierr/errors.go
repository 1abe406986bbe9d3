// Package apierr maps domain errors onto the REST error envelope. Handlers
// return model errors and let WriteError pick the status and code.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/netplay-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInvalidSeat            = "INVALID_SEAT"
	CodeSeatTaken              = "SEAT_TAKEN"
	CodeNotYourTurn            = "NOT_YOUR_TURN"
	CodeIllegalMove            = "ILLEGAL_MOVE"
	CodeRoomNotFound           = "ROOM_NOT_FOUND"
	CodeDuplicateRoom          = "DUPLICATE_ROOM"
	CodeRoomLimitReached       = "ROOM_LIMIT_REACHED"
	CodeRoomNotEmpty           = "ROOM_NOT_EMPTY"
	CodeForbidden              = "FORBIDDEN"
	CodeProfileNotFound        = "PROFILE_NOT_FOUND"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrAuthenticationRequired):
		return &httpError{http.StatusUnauthorized, APIError{CodeAuthenticationRequired, "Authentication required: supply a token or a user name"}}
	case errors.Is(err, model.ErrInvalidSeat):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSeat, "Unrecognized seat"}}
	case errors.Is(err, model.ErrSeatTaken):
		return &httpError{http.StatusConflict, APIError{CodeSeatTaken, "Seat is already taken"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrIllegalMove):
		return &httpError{http.StatusBadRequest, APIError{CodeIllegalMove, err.Error()}}
	case errors.Is(err, model.ErrInvalidRoomID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Room id has no usable characters"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrDuplicateRoom):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateRoom, "Room already exists"}}
	case errors.Is(err, model.ErrRoomLimit):
		return &httpError{http.StatusConflict, APIError{CodeRoomLimitReached, "Room limit reached"}}
	case errors.Is(err, model.ErrRoomNotEmpty):
		return &httpError{http.StatusConflict, APIError{CodeRoomNotEmpty, "Room still has connected clients"}}
	case errors.Is(err, model.ErrForbidden):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Operation not permitted"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Profile not found"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error for a missing or
// unverifiable bearer token
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or missing bearer token"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
