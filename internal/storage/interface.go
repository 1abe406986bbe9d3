package storage

import (
	"context"

	"github.com/mcoot/netplay-go/internal/model"
)

// Storage defines the interface for profile persistence. Profiles are
// cosmetic per-identity records; room and seat state is never persisted
type Storage interface {
	// SaveProfile creates or replaces the profile for its (kind, key)
	SaveProfile(ctx context.Context, profile *model.Profile) error
	// GetProfile returns the profile or model.ErrProfileNotFound
	GetProfile(ctx context.Context, kind model.IdentityKind, key string) (*model.Profile, error)
	// DeleteProfile removes the profile; deleting a missing profile is not an error
	DeleteProfile(ctx context.Context, kind model.IdentityKind, key string) error
	// ListProfiles returns all stored profiles in unspecified order
	ListProfiles(ctx context.Context) ([]*model.Profile, error)
	// Close releases any underlying connections
	Close() error
}
