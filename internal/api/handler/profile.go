package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mcoot/netplay-go/internal/api/middleware"
	"github.com/mcoot/netplay-go/internal/api/request"
	"github.com/mcoot/netplay-go/internal/api/response"
	"github.com/mcoot/netplay-go/internal/services/identity"
)

// ProfileHandler handles profile endpoints. Reachable only with a verified
// bearer token; guests have nothing stored worth editing over REST
type ProfileHandler struct {
	identity *identity.Service
	validate *validator.Validate
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(identityService *identity.Service) *ProfileHandler {
	return &ProfileHandler{
		identity: identityService,
		validate: validator.New(),
	}
}

// Get handles GET /profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())

	profile, err := h.identity.Profile(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}

// Update handles POST /profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())

	var req request.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		WriteError(w, NewInvalidRequestError(validationMessage(err)))
		return
	}

	profile, err := h.identity.UpdateProfile(r.Context(), id, req.DisplayName, req.Country)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}
