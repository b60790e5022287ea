package tagcache

import (
	"time"

	"github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/tagcache/codec"
	lc "github.com/unkn0wn-root/tagcache/local"
)

// WriteCondition gates whether a Set-style write executes.
type WriteCondition uint8

const (
	// Always writes unconditionally (default).
	Always WriteCondition = iota
	// IfExists writes only when the key (or hash field) already exists.
	IfExists
	// IfNotExists writes only when the key (or hash field) is absent.
	IfNotExists
)

// ScanMode selects the pattern-scan strategy. The external contract is the same
// either way: no ordering guarantee, and concurrent mutation may produce
// transient duplicates or omissions at the match boundary.
type ScanMode uint8

const (
	// ScanAuto picks ScanCursor on cluster topologies and ScanFull otherwise.
	ScanAuto ScanMode = iota
	// ScanFull lists the whole namespace in one command (KEYS / HKEYS).
	ScanFull
	// ScanCursor sweeps incrementally (SCAN / HSCAN).
	ScanCursor
)

// SetOptions tune a single write. The zero value means: no TTL beyond
// Options.DefaultTTL, no tags, unconditional write.
//
// Tags, when non-empty, REPLACE the previous tag set of that exact entry
// (last writer wins). An empty Tags leaves existing tag links untouched.
// When the condition rejects the write, tag association is skipped too.
type SetOptions struct {
	TTL  time.Duration  // whole-key expiry; 0 => Options.DefaultTTL
	Tags []string       // tag names to (re)associate after a successful write
	When WriteCondition // default Always
}

// FetchOptions tune the write half of a Fetch miss. TagsFor, when set, derives
// the tag list from the freshly produced value and takes precedence over Tags;
// a fixed Tags list is the special case of a derivation that ignores its input.
type FetchOptions[V any] struct {
	TTL     time.Duration
	Tags    []string
	TagsFor func(V) []string
}

func (o FetchOptions[V]) tags(v V) []string {
	if o.TagsFor != nil {
		return o.TagsFor(v)
	}
	return o.Tags
}

// Options configure a Cache handle. Only Client is required.
type Options[V any] struct {
	// Required
	Client redis.UniversalClient

	Codec     c.Codec[V] // nil => codec.Msgpack[V]
	Namespace string     // isolates the tag index keyspace; "" => "tc"

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// DefaultTTL applies to writes whose per-call TTL is zero.
	// Zero means entries do not expire.
	DefaultTTL time.Duration

	ScanMode  ScanMode
	ScanCount int64 // cursor batch size; 0 => 256

	// Local is an optional in-process near cache for the plain-key read path.
	// Reads served locally may lag remote writes from other processes by up to
	// LocalTTL (0 => 5s).
	Local    lc.Store
	LocalTTL time.Duration

	// SingleFlight dedupes concurrent Fetch misses for the same key within this
	// process: one producer run is shared by all waiters. Off by default; the
	// default contract is last-write-wins across concurrent misses.
	SingleFlight bool

	// CloseClient hands client ownership to the cache: Close will close it.
	// Leave false when the client is shared.
	CloseClient bool
}

// New builds a typed cache handle. Handles are cheap; construct one per value
// type over a shared client.
func New[V any](opts Options[V]) (*Cache[V], error) {
	return newCache[V](opts)
}
