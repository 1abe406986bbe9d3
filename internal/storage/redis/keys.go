package redis

import (
	"fmt"

	"github.com/mcoot/netplay-go/internal/model"
)

// Key prefix for all server data
const keyPrefix = "netplay"

// profileKey returns the Redis key for a Profile
func profileKey(kind model.IdentityKind, key string) string {
	return fmt.Sprintf("%s:profile:%s:%s", keyPrefix, kind, key)
}

// profileIndexKey returns the Redis key for the SET of all profile keys
func profileIndexKey() string {
	return fmt.Sprintf("%s:idx:profiles", keyPrefix)
}
