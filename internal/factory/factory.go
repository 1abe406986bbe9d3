package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/netplay-go/internal/dependencies/clock"
	"github.com/mcoot/netplay-go/internal/dependencies/random"
	"github.com/mcoot/netplay-go/internal/engine/grid"
	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/services/identity"
	"github.com/mcoot/netplay-go/internal/services/room"
	"github.com/mcoot/netplay-go/internal/storage"
	"github.com/mcoot/netplay-go/internal/storage/memory"
	redisstorage "github.com/mcoot/netplay-go/internal/storage/redis"
	"github.com/mcoot/netplay-go/internal/storage/sqlite"
	"github.com/mcoot/netplay-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService *identity.Service
	RoomController  *room.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// IdentityConfig holds token verification settings (optional)
	IdentityConfig identity.Config
	// RoomConfig holds room registry settings (optional)
	RoomConfig room.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.IdentityConfig, cfg.RoomConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, identityCfg identity.Config, roomCfg room.Config, logger *slog.Logger) *App {
	// Create services
	identityService := identity.New(store, clk, logger, identityCfg)

	// Every room gets its own running hub, torn down when the room closes
	hubFactory := func(id model.RoomID) room.Broadcaster {
		h := ws.NewHub(id, logger)
		go h.Run()
		return h
	}
	roomController := room.NewController(grid.Factory, hubFactory, clk, rnd, logger, roomCfg)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		IdentityService: identityService,
		RoomController:  roomController,
	}
}
