package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

const employeeKeyPrefix = "employee_"

// Key derives the cache key for username. Backends reject characters such as
// "@" in keys, so the username is hashed; the result only contains [a-z0-9_].
func Key(username string) string {
	sum := sha256.Sum256([]byte(username))
	return employeeKeyPrefix + hex.EncodeToString(sum[:])
}
