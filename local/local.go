// Package local defines the optional in-process near cache that fronts the
// plain-key read path of tagcache.
//
// A near cache trades freshness for latency: a read served locally may lag
// remote writes from other processes by up to the configured local TTL.
// tagcache keeps the window honest by capping the local lifetime with the
// entry's own TTL and by evicting locally on every write and delete it sees.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for the same key, with no prepended or
// appended metadata and no re-encoding.
package local

import "time"

// Store is a minimal in-process byte cache. Must be safe for concurrent use.
// All operations are process-local and non-blocking, hence no context and no
// error on the read/write path.
type Store interface {
	// Get returns (value, true) on hit; (nil, false) on miss.
	Get(key string) ([]byte, bool)

	// Set stores value with the given TTL. Returns ok=false when the store
	// rejected the write under pressure. Stores without per-entry TTL may
	// ignore ttl and bound staleness by their own global window.
	Set(key string, value []byte, ttl time.Duration) bool

	// Del removes a key (best-effort).
	Del(key string)

	// Reset drops every entry.
	Reset() error

	// Close releases resources.
	Close() error
}
