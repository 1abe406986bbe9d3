package model

import (
	"regexp"
	"strings"
	"time"
)

// Profile is the persisted presentation data for an identity. Purely
// cosmetic: losing a profile never affects seats or game state
type Profile struct {
	Key         string
	Kind        IdentityKind
	DisplayName string
	Country     string
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

var countryRe = regexp.MustCompile(`[^a-zA-Z]`)

// SanitizeDisplayName strips a display name down to the same alphabet as
// identity keys, capped at 20 bytes
func SanitizeDisplayName(raw string) string {
	name := userKeyRe.ReplaceAllString(raw, "")
	if len(name) > 20 {
		name = name[:20]
	}
	return name
}

// SanitizeCountry reduces the input to a lowercase two-letter code, or ""
func SanitizeCountry(raw string) string {
	code := strings.ToLower(countryRe.ReplaceAllString(raw, ""))
	if len(code) > 2 {
		code = code[:2]
	}
	return code
}
