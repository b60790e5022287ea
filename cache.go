package tagcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/tagcache/codec"
	lc "github.com/unkn0wn-root/tagcache/local"
)

const (
	defaultNamespace = "tc"
	defaultScanCount = 256
	defaultLocalTTL  = 5 * time.Second
)

// Cache is a typed handle over a shared Redis client. All operations are
// synchronous and may block on network I/O; the client's pool is never held
// across a user-supplied producer call, so concurrent callers stay unblocked
// during slow produces.
type Cache[V any] struct {
	rdb   redis.UniversalClient
	codec c.Codec[V]
	log   Logger
	hooks Hooks

	ns        string
	tagPrefix string // "tag:<ns>:"
	refPrefix string // "ref:<ns>:"

	defaultTTL time.Duration
	scanMode   ScanMode
	scanCount  int64

	local    lc.Store
	localTTL time.Duration

	flight      *singleflight.Group // nil unless Options.SingleFlight
	closeClient bool
}

func newCache[V any](opts Options[V]) (*Cache[V], error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("tagcache: client is required")
	}

	cc := &Cache[V]{
		rdb:         opts.Client,
		local:       opts.Local,
		scanMode:    opts.ScanMode,
		defaultTTL:  opts.DefaultTTL,
		closeClient: opts.CloseClient,
	}

	// defaults
	if opts.Codec != nil {
		cc.codec = opts.Codec
	} else {
		cc.codec = c.Msgpack[V]{}
	}
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.ns = coalesce(opts.Namespace, defaultNamespace)
	cc.scanCount = coalesce[int64](opts.ScanCount, defaultScanCount)
	cc.localTTL = coalesce[time.Duration](opts.LocalTTL, defaultLocalTTL)

	cc.tagPrefix = "tag:" + cc.ns + ":"
	cc.refPrefix = "ref:" + cc.ns + ":"

	if opts.SingleFlight {
		cc.flight = &singleflight.Group{}
	}
	return cc, nil
}

// Close releases the near cache and, when this handle owns it, the Redis
// client. Safe to call multiple times; repeated calls become no-ops.
func (cc *Cache[V]) Close(ctx context.Context) error {
	if cc.local != nil {
		_ = cc.local.Close()
	}
	if cc.closeClient {
		if err := cc.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}

// ttlOrDefault resolves a per-call TTL against the configured default.
// Non-positive results mean "no expiry".
func (cc *Cache[V]) ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return cc.defaultTTL
}

func (cc *Cache[V]) tagSetKey(tag string) string { return cc.tagPrefix + tag }

// localWarm stores raw bytes in the near cache. The local lifetime is capped
// by the entry TTL so a short-lived entry never outlives itself locally.
func (cc *Cache[V]) localWarm(key string, raw []byte, entryTTL time.Duration) {
	if cc.local == nil {
		return
	}
	ttl := cc.localTTL
	if entryTTL > 0 && entryTTL < ttl {
		ttl = entryTTL
	}
	if !cc.local.Set(key, raw, ttl) {
		cc.hooks.LocalSetRejected(key)
	}
}

func (cc *Cache[V]) localDrop(keys ...string) {
	if cc.local == nil {
		return
	}
	for _, k := range keys {
		cc.local.Del(k)
	}
}
