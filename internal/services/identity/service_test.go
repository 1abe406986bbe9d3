package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/netplay-go/internal/dependencies/mocks"
	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/storage/memory"
	"github.com/mcoot/netplay-go/internal/testutil"
)

const testSecret = "test-secret-do-not-use"

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), Config{
		Secret:   testSecret,
		Audience: "authenticated",
	})
	s.ctx = context.Background()
}

// signToken builds an HS256 token for tests; claims missing exp get a
// far-future one
func (s *ServiceSuite) signToken(claims jwt.MapClaims, secret string) string {
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	s.Require().NoError(err)
	return token
}

// Token resolution tests

func (s *ServiceSuite) TestResolveVerifiedToken() {
	token := s.signToken(jwt.MapClaims{
		"aud":   "authenticated",
		"email": "alice@example.com",
		"sub":   "user-uuid-1",
	}, testSecret)

	id, err := s.service.Resolve(s.ctx, token, "")
	s.Require().NoError(err)
	s.Equal(model.IdentityVerified, id.Kind)
	s.Equal("alice@example.com", id.Key)
}

func (s *ServiceSuite) TestResolveTokenSubFallback() {
	token := s.signToken(jwt.MapClaims{
		"aud": "authenticated",
		"sub": "user-uuid-1",
	}, testSecret)

	id, err := s.service.Resolve(s.ctx, token, "")
	s.Require().NoError(err)
	s.Equal(model.IdentityVerified, id.Kind)
	s.Equal("user-uuid-1", id.Key)
}

func (s *ServiceSuite) TestResolveExpiredTokenFallsBackToGuest() {
	token := s.signToken(jwt.MapClaims{
		"aud":   "authenticated",
		"email": "alice@example.com",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	id, err := s.service.Resolve(s.ctx, token, "alice")
	s.Require().NoError(err)
	s.Equal(model.IdentityGuest, id.Kind)
	s.Equal("alice", id.Key)
}

func (s *ServiceSuite) TestResolveBadSignatureFallsBackToGuest() {
	token := s.signToken(jwt.MapClaims{
		"aud":   "authenticated",
		"email": "alice@example.com",
	}, "a-different-secret")

	id, err := s.service.Resolve(s.ctx, token, "alice")
	s.Require().NoError(err)
	s.Equal(model.IdentityGuest, id.Kind)
}

func (s *ServiceSuite) TestResolveWrongAudienceFallsBackToGuest() {
	token := s.signToken(jwt.MapClaims{
		"aud":   "somewhere-else",
		"email": "alice@example.com",
	}, testSecret)

	id, err := s.service.Resolve(s.ctx, token, "alice")
	s.Require().NoError(err)
	s.Equal(model.IdentityGuest, id.Kind)
}

func (s *ServiceSuite) TestResolveGarbageTokenFallsBackToGuest() {
	id, err := s.service.Resolve(s.ctx, "not.a.jwt", "alice")
	s.Require().NoError(err)
	s.Equal(model.IdentityGuest, id.Kind)
}

func (s *ServiceSuite) TestResolveTokenWithoutSubjectFallsBackToGuest() {
	token := s.signToken(jwt.MapClaims{
		"aud": "authenticated",
	}, testSecret)

	id, err := s.service.Resolve(s.ctx, token, "alice")
	s.Require().NoError(err)
	s.Equal(model.IdentityGuest, id.Kind)
}

func (s *ServiceSuite) TestResolveNoSecretConfigured() {
	service := New(s.storage, s.clock, testutil.NopLogger(), Config{})
	token := s.signToken(jwt.MapClaims{
		"aud":   "authenticated",
		"email": "alice@example.com",
	}, testSecret)

	// Verification is disabled, so even a well-formed token is a guest
	id, err := service.Resolve(s.ctx, token, "alice")
	s.Require().NoError(err)
	s.Equal(model.IdentityGuest, id.Kind)
}

func (s *ServiceSuite) TestResolveVerifiedTokenIsCached() {
	token := s.signToken(jwt.MapClaims{
		"aud":   "authenticated",
		"email": "alice@example.com",
	}, testSecret)

	_, err := s.service.Resolve(s.ctx, token, "")
	s.Require().NoError(err)

	cached, ok := s.service.cache.Get(token)
	s.Require().True(ok)
	s.Equal(model.Verified("alice@example.com"), cached.(model.Identity))
}

// Guest resolution tests

func (s *ServiceSuite) TestResolveGuest() {
	id, err := s.service.Resolve(s.ctx, "", "alice")
	s.Require().NoError(err)
	s.Equal(model.Guest("alice"), id)
}

func (s *ServiceSuite) TestResolveGuestNameSanitized() {
	id, err := s.service.Resolve(s.ctx, "", "alice luna!<script>")
	s.Require().NoError(err)
	s.Equal("alicelunascript", id.Key)
}

func (s *ServiceSuite) TestResolveNothingUsable() {
	_, err := s.service.Resolve(s.ctx, "", "")
	s.ErrorIs(err, model.ErrAuthenticationRequired)
}

func (s *ServiceSuite) TestResolveNameAllStripped() {
	_, err := s.service.Resolve(s.ctx, "", "!!! ???")
	s.ErrorIs(err, model.ErrAuthenticationRequired)
}

func (s *ServiceSuite) TestResolveBadTokenAndNoName() {
	_, err := s.service.Resolve(s.ctx, "garbage", "")
	s.ErrorIs(err, model.ErrAuthenticationRequired)
}

// TouchProfile tests

func (s *ServiceSuite) TestTouchProfileCreates() {
	id := model.Guest("alice")
	s.service.TouchProfile(s.ctx, id, "Alice", "AU")

	profile, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", profile.DisplayName)
	s.Equal("au", profile.Country)
	s.Equal(s.clock.CurrentTime, profile.CreatedAt)
	s.Equal(s.clock.CurrentTime, profile.LastSeenAt)
}

func (s *ServiceSuite) TestTouchProfileUpdatesLastSeenOnly() {
	id := model.Guest("alice")
	s.service.TouchProfile(s.ctx, id, "Alice", "au")

	created := s.clock.CurrentTime
	s.clock.Advance(time.Hour)
	s.service.TouchProfile(s.ctx, id, "", "")

	profile, err := s.storage.GetProfile(s.ctx, model.IdentityGuest, "alice")
	s.Require().NoError(err)
	s.Equal("Alice", profile.DisplayName, "empty display name must not clobber")
	s.Equal(created, profile.CreatedAt)
	s.Equal(created.Add(time.Hour), profile.LastSeenAt)
}

func (s *ServiceSuite) TestTouchProfileVerifiedIgnoresConnectionName() {
	id := model.Verified("alice@example.com")
	s.service.TouchProfile(s.ctx, id, "Impostor", "au")

	profile, err := s.storage.GetProfile(s.ctx, model.IdentityVerified, "alice@example.com")
	s.Require().NoError(err)
	s.Empty(profile.DisplayName)
	s.Equal("au", profile.Country)
}

func (s *ServiceSuite) TestTouchProfileZeroIdentityIsNoop() {
	s.service.TouchProfile(s.ctx, model.Identity{}, "Alice", "au")

	profiles, err := s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Empty(profiles)
}

// Profile / UpdateProfile tests

func (s *ServiceSuite) TestProfileNotFound() {
	_, err := s.service.Profile(s.ctx, model.Guest("nobody"))
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *ServiceSuite) TestUpdateProfileCreates() {
	id := model.Verified("alice@example.com")
	profile, err := s.service.UpdateProfile(s.ctx, id, "Alice", "New Zealand")
	s.Require().NoError(err)
	s.Equal("Alice", profile.DisplayName)
	s.Equal("ne", profile.Country)

	stored, err := s.service.Profile(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(profile.DisplayName, stored.DisplayName)
}

func (s *ServiceSuite) TestUpdateProfilePartial() {
	id := model.Verified("alice@example.com")
	_, err := s.service.UpdateProfile(s.ctx, id, "Alice", "au")
	s.Require().NoError(err)

	profile, err := s.service.UpdateProfile(s.ctx, id, "", "nz")
	s.Require().NoError(err)
	s.Equal("Alice", profile.DisplayName)
	s.Equal("nz", profile.Country)
}
