package util

import (
	"crypto/sha256"
	"fmt"
)

// HashedKey returns a fixed-length storage key for arbitrary encoded bytes.
// Used for the per-entry reverse tag sets, whose identity (kind+key+field)
// can be arbitrarily long and binary.
func HashedKey(prefix string, encoded []byte) string {
	sum := sha256.Sum256(encoded)
	return fmt.Sprintf("%s%x", prefix, sum[:8])
}
