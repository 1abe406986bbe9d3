package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mcoot/netplay-go/internal/api/handler"
	"github.com/mcoot/netplay-go/internal/api/middleware"
	"github.com/mcoot/netplay-go/internal/services/identity"
	"github.com/mcoot/netplay-go/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	RoomController  *room.Controller
	IdentityService *identity.Service
	// WSHandler serves websocket upgrades at /ws; nil leaves the route unmounted
	WSHandler http.Handler
	// AdminToken guards the admin endpoints; empty disables them
	AdminToken string
	// AllowedOrigins is the CORS allowlist; "*" allows every origin
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomsHandler := handler.NewRoomsHandler(cfg.RoomController)
	profileHandler := handler.NewProfileHandler(cfg.IdentityService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.IdentityService)
	adminMiddleware := middleware.Admin(cfg.AdminToken)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Room routes (no auth required: occupancy is public)
	rooms := r.PathPrefix("/rooms").Subrouter()
	rooms.HandleFunc("", roomsHandler.List).Methods(http.MethodGet)
	rooms.HandleFunc("", roomsHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{room_id}", roomsHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{room_id}", roomsHandler.Delete).Methods(http.MethodDelete)

	// Admin routes
	admin := rooms.PathPrefix("/{room_id}").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/reset", roomsHandler.Reset).Methods(http.MethodPost)

	// Profile routes (verified identities only)
	profile := r.PathPrefix("/profile").Subrouter()
	profile.Use(authMiddleware)
	profile.HandleFunc("", profileHandler.Get).Methods(http.MethodGet)
	profile.HandleFunc("", profileHandler.Update).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Websocket endpoint; the handler does its own upgrade and identity checks
	if cfg.WSHandler != nil {
		r.Handle("/ws", cfg.WSHandler).Methods(http.MethodGet)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.AdminTokenHeader},
	})

	return c.Handler(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
