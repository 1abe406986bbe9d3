package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/netplay-go/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSaveAndGetProfile() {
	profile := &model.Profile{
		Key:         "alice",
		Kind:        model.IdentityGuest,
		DisplayName: "Alice",
		Country:     "au",
		CreatedAt:   time.Now(),
		LastSeenAt:  time.Now(),
	}

	err := s.storage.SaveProfile(s.ctx, profile)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	s.Equal(profile.Key, retrieved.Key)
	s.Equal(profile.DisplayName, retrieved.DisplayName)
	s.Equal(profile.Country, retrieved.Country)
}

func (s *StorageSuite) TestGetProfileNotFound() {
	_, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestKindsAreSeparateNamespaces() {
	guest := &model.Profile{Key: "alice", Kind: model.IdentityGuest, DisplayName: "Guest Alice"}
	verified := &model.Profile{Key: "alice", Kind: model.IdentityVerified, DisplayName: "Real Alice"}

	s.Require().NoError(s.storage.SaveProfile(s.ctx, guest))
	s.Require().NoError(s.storage.SaveProfile(s.ctx, verified))

	retrieved, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	s.Equal("Guest Alice", retrieved.DisplayName)

	retrieved, err = s.storage.GetProfile(s.ctx, model.IdentityVerified, "alice")
	s.Require().NoError(err)
	s.Equal("Real Alice", retrieved.DisplayName)
}

func (s *StorageSuite) TestSaveOverwrites() {
	profile := &model.Profile{Key: "alice", Kind: model.IdentityGuest, DisplayName: "Alice"}
	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	profile.DisplayName = "Alicia"
	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	retrieved, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	s.Equal("Alicia", retrieved.DisplayName)
}

func (s *StorageSuite) TestGetReturnsACopy() {
	profile := &model.Profile{Key: "alice", Kind: model.IdentityGuest, DisplayName: "Alice"}
	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	retrieved, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	retrieved.DisplayName = "Mutated"

	again, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", again.DisplayName)
}

func (s *StorageSuite) TestDeleteProfile() {
	profile := &model.Profile{Key: "alice", Kind: model.IdentityGuest, DisplayName: "Alice"}
	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	err := s.storage.DeleteProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)

	_, err = s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestDeleteMissingProfileIsNoop() {
	err := s.storage.DeleteProfile(s.ctx, model.IdentityGuest, "nonexistent")
	s.NoError(err)
}

func (s *StorageSuite) TestListProfiles() {
	profiles, err := s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Empty(profiles)

	s.Require().NoError(s.storage.SaveProfile(s.ctx, &model.Profile{Key: "alice", Kind: model.IdentityGuest}))
	s.Require().NoError(s.storage.SaveProfile(s.ctx, &model.Profile{Key: "bob", Kind: model.IdentityVerified}))

	profiles, err = s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Len(profiles, 2)
}
