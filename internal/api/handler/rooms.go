package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/mcoot/netplay-go/internal/api/request"
	"github.com/mcoot/netplay-go/internal/api/response"
	"github.com/mcoot/netplay-go/internal/services/room"
)

// RoomsHandler handles room registry endpoints
type RoomsHandler struct {
	rooms    *room.Controller
	validate *validator.Validate
}

// NewRoomsHandler creates a new rooms handler
func NewRoomsHandler(rooms *room.Controller) *RoomsHandler {
	return &RoomsHandler{
		rooms:    rooms,
		validate: validator.New(),
	}
}

// List handles GET /rooms
func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RoomsFromModel(h.rooms.List()))
}

// Get handles GET /rooms/{room_id}
func (h *RoomsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.Get(mux.Vars(r)["room_id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm.Summary()))
}

// Create handles POST /rooms
func (h *RoomsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body: a generated id and default label
		req = request.CreateRoomRequest{}
	}

	if err := h.validate.Struct(req); err != nil {
		WriteError(w, NewInvalidRequestError(validationMessage(err)))
		return
	}

	rm, err := h.rooms.Create(req.RoomID, req.Label)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(rm.Summary()))
}

// Delete handles DELETE /rooms/{room_id}
func (h *RoomsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.Delete(mux.Vars(r)["room_id"]); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Reset handles POST /rooms/{room_id}/reset. The room pushes the fresh
// state to its connected clients itself
func (h *RoomsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.Get(mux.Vars(r)["room_id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	rm.Reset()

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm.Summary()))
}
