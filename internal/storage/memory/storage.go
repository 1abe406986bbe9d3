package memory

import (
	"context"
	"sync"

	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	profiles map[profileKey]*model.Profile
}

type profileKey struct {
	kind model.IdentityKind
	key  string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles: make(map[profileKey]*model.Profile),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.profiles[profileKey{kind: profile.Kind, key: profile.Key}] = &copied
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, kind model.IdentityKind, key string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[profileKey{kind: kind, key: key}]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, kind model.IdentityKind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, profileKey{kind: kind, key: key})
	return nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]*model.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		copied := *profile
		profiles = append(profiles, &copied)
	}
	return profiles, nil
}

func (s *Storage) Close() error {
	return nil
}
