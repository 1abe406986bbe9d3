package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mcoot/netplay-go/internal/dependencies/clock"
	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/storage"
)

// Config holds configuration for the identity service
type Config struct {
	// Secret is the shared HS256 secret tokens are verified against.
	// Empty disables token verification: every connection is a guest
	Secret string
	// Audience is the expected aud claim; empty skips the audience check
	Audience string
	// TokenCacheTTL bounds how long a verified token is trusted without
	// re-checking its signature
	TokenCacheTTL time.Duration
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		Audience:      "authenticated",
		TokenCacheTTL: 5 * time.Minute,
	}
}

// Service resolves connection credentials into identities. A token that
// verifies yields a verified identity; anything else falls back to the
// self-reported guest name
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	secret   []byte
	audience string
	cache    *gocache.Cache
}

// New creates a new identity Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.TokenCacheTTL == 0 {
		cfg.TokenCacheTTL = DefaultConfig().TokenCacheTTL
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "identity")),
		secret:   []byte(cfg.Secret),
		audience: cfg.Audience,
		cache:    gocache.New(cfg.TokenCacheTTL, 2*cfg.TokenCacheTTL),
	}
}

// Resolve turns the credentials a connection supplied into an identity.
// Token verification is attempted first; any token failure falls through to
// guest resolution rather than rejecting the caller. A connection that
// presents neither a usable token nor a usable name cannot be identified
func (s *Service) Resolve(ctx context.Context, token, name string) (model.Identity, error) {
	if token != "" {
		id, err := s.verifyToken(token)
		if err == nil {
			return id, nil
		}
		s.logger.Debug("token rejected, trying guest fallback",
			slog.String("error", err.Error()),
		)
	}

	if key := model.SanitizeUserKey(name); key != "" {
		return model.Guest(key), nil
	}

	return model.Identity{}, model.ErrAuthenticationRequired
}

// verifyToken checks the token signature, expiry and audience, and extracts
// the canonical subject: the email claim, falling back to sub
func (s *Service) verifyToken(token string) (model.Identity, error) {
	if len(s.secret) == 0 {
		return model.Identity{}, errors.New("token verification disabled")
	}

	if cached, ok := s.cache.Get(token); ok {
		return cached.(model.Identity), nil
	}

	opts := []jwt.ParserOption{}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return model.Identity{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return model.Identity{}, errors.New("invalid token")
	}

	subject, _ := claims["email"].(string)
	if subject == "" {
		subject, _ = claims["sub"].(string)
	}
	if subject == "" {
		return model.Identity{}, errors.New("token has no usable subject")
	}

	id := model.Verified(subject)
	s.cache.Set(token, id, gocache.DefaultExpiration)
	return id, nil
}

// TouchProfile upserts the profile behind an identity when a connection is
// established. Best-effort: failures are logged, never surfaced, so profile
// storage trouble cannot keep anyone out of a room. Display names only come
// from the connection for guests; verified users set theirs via the profile
// endpoint
func (s *Service) TouchProfile(ctx context.Context, id model.Identity, displayName, country string) {
	if id.IsZero() {
		return
	}

	now := s.clock.Now()

	profile, err := s.storage.GetProfile(ctx, id.Kind, id.Key)
	if errors.Is(err, model.ErrProfileNotFound) {
		profile = &model.Profile{
			Key:       id.Key,
			Kind:      id.Kind,
			CreatedAt: now,
		}
	} else if err != nil {
		s.logger.Warn("profile lookup failed",
			slog.String("identity", id.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	if id.Kind == model.IdentityGuest {
		if name := model.SanitizeDisplayName(displayName); name != "" {
			profile.DisplayName = name
		}
	}
	if code := model.SanitizeCountry(country); code != "" {
		profile.Country = code
	}
	profile.LastSeenAt = now

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		s.logger.Warn("profile upsert failed",
			slog.String("identity", id.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Profile returns the stored profile for an identity
func (s *Service) Profile(ctx context.Context, id model.Identity) (*model.Profile, error) {
	return s.storage.GetProfile(ctx, id.Kind, id.Key)
}

// UpdateProfile applies the provided fields to the identity's profile,
// creating it if needed. Empty fields are left untouched
func (s *Service) UpdateProfile(ctx context.Context, id model.Identity, displayName, country string) (*model.Profile, error) {
	now := s.clock.Now()

	profile, err := s.storage.GetProfile(ctx, id.Kind, id.Key)
	if errors.Is(err, model.ErrProfileNotFound) {
		profile = &model.Profile{
			Key:       id.Key,
			Kind:      id.Kind,
			CreatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	if name := model.SanitizeDisplayName(displayName); name != "" {
		profile.DisplayName = name
	}
	if code := model.SanitizeCountry(country); code != "" {
		profile.Country = code
	}
	profile.LastSeenAt = now

	if err := s.storage.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated",
		slog.String("identity", id.String()),
	)

	return profile, nil
}
