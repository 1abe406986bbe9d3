package room

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/mcoot/netplay-go/internal/dependencies/clock"
	"github.com/mcoot/netplay-go/internal/dependencies/random"
	"github.com/mcoot/netplay-go/internal/engine"
	"github.com/mcoot/netplay-go/internal/model"
)

const (
	// GeneratedIDLength is the random part of generated room ids
	GeneratedIDLength = 6
	// GeneratedIDAlphabet is slug-safe and avoids easily-confused characters
	GeneratedIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

	generatedIDPrefix = "room-"
)

// HubFactory builds a running broadcaster for a new room
type HubFactory func(id model.RoomID) Broadcaster

// Config holds configuration for the room registry
type Config struct {
	// MaxRooms caps the total number of rooms, the default room included
	MaxRooms int
	// DefaultLabel is the display label of the default room
	DefaultLabel string
}

// DefaultConfig returns default registry configuration
func DefaultConfig() Config {
	return Config{
		MaxRooms:     model.MaxRooms,
		DefaultLabel: "Main Room",
	}
}

// Controller is the room registry. It owns room lifecycles; the rooms own
// everything that happens inside them
type Controller struct {
	engineFactory engine.Factory
	hubFactory    HubFactory
	clock         clock.Clock
	random        random.Random
	logger        *slog.Logger

	maxRooms     int
	defaultLabel string

	mu    sync.Mutex
	rooms map[model.RoomID]*Room
	order []model.RoomID
}

// NewController creates the registry with the default room already present
func NewController(
	engineFactory engine.Factory,
	hubFactory HubFactory,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if cfg.MaxRooms == 0 {
		cfg.MaxRooms = DefaultConfig().MaxRooms
	}
	if cfg.DefaultLabel == "" {
		cfg.DefaultLabel = DefaultConfig().DefaultLabel
	}

	c := &Controller{
		engineFactory: engineFactory,
		hubFactory:    hubFactory,
		clock:         clk,
		random:        rnd,
		logger:        logger.With(slog.String("component", "rooms")),
		maxRooms:      cfg.MaxRooms,
		defaultLabel:  cfg.DefaultLabel,
		rooms:         make(map[model.RoomID]*Room),
	}

	c.mu.Lock()
	c.addLocked(model.DefaultRoomID, cfg.DefaultLabel)
	c.mu.Unlock()

	return c
}

// Create adds a room. An explicit id is slugified and must not collide; an
// omitted id gets a generated one. An omitted label defaults to the id
func (c *Controller) Create(rawID, label string) (*Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.rooms) >= c.maxRooms {
		return nil, model.ErrRoomLimit
	}

	var id model.RoomID
	if strings.TrimSpace(rawID) != "" {
		id = model.SlugifyRoomID(rawID)
		if id == "" {
			return nil, model.ErrInvalidRoomID
		}
		if _, exists := c.rooms[id]; exists {
			return nil, model.ErrDuplicateRoom
		}
	} else {
		id = c.generateIDLocked()
	}

	if label == "" {
		label = string(id)
	}

	rm := c.addLocked(id, label)
	c.logger.Info("room created",
		slog.String("room", string(id)),
		slog.String("label", label),
	)
	return rm, nil
}

// Get looks a room up by id
func (c *Controller) Get(rawID string) (*Room, error) {
	id := model.SlugifyRoomID(rawID)

	c.mu.Lock()
	defer c.mu.Unlock()

	rm, ok := c.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return rm, nil
}

// GetOrDefault looks a room up by id, routing missing or unknown ids to the
// default room so a connection always lands somewhere
func (c *Controller) GetOrDefault(rawID string) *Room {
	id := model.NormalizeRoomID(rawID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rm, ok := c.rooms[id]; ok {
		return rm
	}
	return c.rooms[model.DefaultRoomID]
}

// List returns summaries of every room in creation order
func (c *Controller) List() []model.RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	summaries := make([]model.RoomSummary, 0, len(c.order))
	for _, id := range c.order {
		if rm, ok := c.rooms[id]; ok {
			summaries = append(summaries, rm.Summary())
		}
	}
	return summaries
}

// Delete removes an empty room. The default room is permanent
func (c *Controller) Delete(rawID string) error {
	id := model.SlugifyRoomID(rawID)
	if id == model.DefaultRoomID {
		return model.ErrForbidden
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rm, ok := c.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	if rm.Occupied() {
		return model.ErrRoomNotEmpty
	}

	rm.Close()
	delete(c.rooms, id)
	c.order = lo.Without(c.order, id)

	c.logger.Info("room deleted", slog.String("room", string(id)))
	return nil
}

// addLocked constructs and registers a room. Caller holds the lock
func (c *Controller) addLocked(id model.RoomID, label string) *Room {
	rm := NewRoom(id, label, c.engineFactory(), c.hubFactory(id), c.clock, c.logger)
	c.rooms[id] = rm
	c.order = append(c.order, id)
	return rm
}

// generateIDLocked draws ids until one is free. Caller holds the lock
func (c *Controller) generateIDLocked() model.RoomID {
	for {
		id := model.RoomID(generatedIDPrefix + c.random.String(GeneratedIDLength, GeneratedIDAlphabet))
		if _, exists := c.rooms[id]; !exists {
			return id
		}
	}
}

// Interface for dependency injection
type ControllerInterface interface {
	Create(rawID, label string) (*Room, error)
	Get(rawID string) (*Room, error)
	GetOrDefault(rawID string) *Room
	List() []model.RoomSummary
	Delete(rawID string) error
}

var _ ControllerInterface = (*Controller)(nil)
