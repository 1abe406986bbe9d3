package model

import (
	"fmt"
	"regexp"
)

// IdentityKind distinguishes token-verified users from self-reported guests
type IdentityKind string

const (
	IdentityVerified IdentityKind = "verified"
	IdentityGuest    IdentityKind = "guest"
)

// Identity is who a connection claims to be. Key is only meaningful
// together with Kind: guest "alice" and verified "alice" are different
// people and never match each other
type Identity struct {
	Kind IdentityKind
	Key  string
}

// Verified returns an identity backed by a validated token subject
func Verified(subject string) Identity {
	return Identity{Kind: IdentityVerified, Key: subject}
}

// Guest returns a self-reported guest identity
func Guest(name string) Identity {
	return Identity{Kind: IdentityGuest, Key: name}
}

// IsVerified reports whether the identity came from a validated token
func (i Identity) IsVerified() bool {
	return i.Kind == IdentityVerified
}

// IsZero reports whether the identity is unset
func (i Identity) IsZero() bool {
	return i.Kind == "" && i.Key == ""
}

// String renders the identity for logs, e.g. "guest:alice"
func (i Identity) String() string {
	return fmt.Sprintf("%s:%s", i.Kind, i.Key)
}

var userKeyRe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeUserKey strips a self-reported name down to the characters
// allowed in an identity key, capped at 48 bytes. Returns "" if nothing
// survives
func SanitizeUserKey(raw string) string {
	key := userKeyRe.ReplaceAllString(raw, "")
	if len(key) > 48 {
		key = key[:48]
	}
	return key
}
