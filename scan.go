package tagcache

import (
	"context"
	"iter"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tagcache/internal/util"
)

// ScanKeys lazily enumerates data keys matching a Redis glob pattern
// (*, ?, [class], \escape). Re-ranging the sequence restarts the match from
// the beginning. Keys of the internal tag index are filtered out.
//
// Under concurrent mutation the sweep may transiently duplicate or miss keys
// at the match boundary; callers must not treat that as corruption.
func (cc *Cache[V]) ScanKeys(ctx context.Context, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		switch cc.keyScanMode(pattern) {
		case ScanFull:
			keys, err := cc.rdb.Keys(ctx, pattern).Result()
			if err != nil {
				yield("", err)
				return
			}
			for _, k := range keys {
				if cc.reserved(k) {
					continue
				}
				if !yield(k, nil) {
					return
				}
			}
		default:
			var cursor uint64
			for {
				keys, next, err := cc.rdb.Scan(ctx, cursor, pattern, cc.scanCount).Result()
				if err != nil {
					yield("", err)
					return
				}
				for _, k := range keys {
					if cc.reserved(k) {
						continue
					}
					if !yield(k, nil) {
						return
					}
				}
				if next == 0 {
					return
				}
				cursor = next
			}
		}
	}
}

// KeysByPattern drains ScanKeys into a slice.
func (cc *Cache[V]) KeysByPattern(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	for k, err := range cc.ScanKeys(ctx, pattern) {
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// ScanHashFields lazily enumerates the fields of one hash matching a Redis
// glob pattern. Same laziness and boundary caveats as ScanKeys.
func (cc *Cache[V]) ScanHashFields(ctx context.Context, key, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		switch cc.fieldScanMode() {
		case ScanFull:
			fields, err := cc.rdb.HKeys(ctx, key).Result()
			if err != nil {
				yield("", err)
				return
			}
			for _, f := range fields {
				if !util.MatchGlob(pattern, f) {
					continue
				}
				if !yield(f, nil) {
					return
				}
			}
		default:
			var cursor uint64
			for {
				// HSCAN yields field/value pairs; values are skipped.
				kv, next, err := cc.rdb.HScan(ctx, key, cursor, pattern, cc.scanCount).Result()
				if err != nil {
					yield("", err)
					return
				}
				for i := 0; i+1 < len(kv); i += 2 {
					if !yield(kv[i], nil) {
						return
					}
				}
				if next == 0 {
					return
				}
				cursor = next
			}
		}
	}
}

// HashFieldsByPattern drains ScanHashFields into a slice.
func (cc *Cache[V]) HashFieldsByPattern(ctx context.Context, key, pattern string) ([]string, error) {
	var out []string
	for f, err := range cc.ScanHashFields(ctx, key, pattern) {
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// keyScanMode resolves the effective strategy for flat keyspace scans. KEYS
// cannot cross cluster slots, so a cluster topology forces the cursor sweep;
// a requested ScanFull degrades softly.
func (cc *Cache[V]) keyScanMode(pattern string) ScanMode {
	if _, cluster := cc.rdb.(*redis.ClusterClient); cluster {
		if cc.scanMode == ScanFull {
			cc.hooks.ScanDegraded(pattern, "cluster")
			cc.log.Warn("full key scan unsupported on cluster; using cursor sweep", Fields{"pattern": pattern})
		}
		return ScanCursor
	}
	if cc.scanMode == ScanCursor {
		return ScanCursor
	}
	return ScanFull
}

// fieldScanMode: a hash lives on one node, so both strategies always work.
func (cc *Cache[V]) fieldScanMode() ScanMode {
	if cc.scanMode == ScanCursor {
		return ScanCursor
	}
	return ScanFull
}

func (cc *Cache[V]) reserved(key string) bool {
	return strings.HasPrefix(key, cc.tagPrefix) || strings.HasPrefix(key, cc.refPrefix)
}
