package tagcache

import (
	"context"
)

// ProduceFunc computes a value on a cache miss. It runs outside any store
// connection, so a slow producer never starves concurrent callers.
type ProduceFunc[V any] func() (V, error)

// Fetch is the cache-aside read for plain keys: return the cached value on a
// hit (producer, tags and TTL are ignored); on a miss run produce exactly
// once, persist the result, then associate tags.
//
// No cross-caller mutual exclusion is applied by default: concurrent misses
// for the same key may each run produce, and the store's last write wins.
// With Options.SingleFlight, in-process concurrent misses share one run.
//
// A producer error propagates unchanged and nothing is written.
func (cc *Cache[V]) Fetch(ctx context.Context, key string, produce ProduceFunc[V], opt FetchOptions[V]) (V, error) {
	var zero V
	v, ok, err := cc.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}
	if cc.flight != nil {
		out, err, _ := cc.flight.Do("k\x00"+key, func() (any, error) {
			return cc.produceKey(ctx, key, produce, opt)
		})
		if err != nil {
			return zero, err
		}
		return out.(V), nil
	}
	return cc.produceKey(ctx, key, produce, opt)
}

// FetchHashed is the cache-aside read for hash fields. TTL applies to the
// whole key, as in SetHashed.
func (cc *Cache[V]) FetchHashed(ctx context.Context, key, field string, produce ProduceFunc[V], opt FetchOptions[V]) (V, error) {
	var zero V
	v, ok, err := cc.GetHashed(ctx, key, field)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}
	if cc.flight != nil {
		out, err, _ := cc.flight.Do("h\x00"+key+"\x00"+field, func() (any, error) {
			return cc.produceHashed(ctx, key, field, produce, opt)
		})
		if err != nil {
			return zero, err
		}
		return out.(V), nil
	}
	return cc.produceHashed(ctx, key, field, produce, opt)
}

func (cc *Cache[V]) produceKey(ctx context.Context, key string, produce ProduceFunc[V], opt FetchOptions[V]) (V, error) {
	var zero V
	v, err := produce()
	if err != nil {
		return zero, err
	}
	raw, err := cc.codec.Encode(v)
	if err != nil {
		return zero, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	ttl := cc.ttlOrDefault(opt.TTL)
	if _, err := cc.setRaw(ctx, key, raw, ttl, Always); err != nil {
		return zero, err
	}
	cc.localWarm(key, raw, ttl)
	if tags := opt.tags(v); len(tags) > 0 {
		if err := cc.replaceTags(ctx, KeyEntry(key), tags); err != nil {
			return v, &TagAssociationError{Key: key, Tags: tags, Err: err}
		}
	}
	return v, nil
}

func (cc *Cache[V]) produceHashed(ctx context.Context, key, field string, produce ProduceFunc[V], opt FetchOptions[V]) (V, error) {
	var zero V
	v, err := produce()
	if err != nil {
		return zero, err
	}
	raw, err := cc.codec.Encode(v)
	if err != nil {
		return zero, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	if _, err := cc.setHashedRaw(ctx, key, field, raw, cc.ttlOrDefault(opt.TTL), Always); err != nil {
		return zero, err
	}
	if tags := opt.tags(v); len(tags) > 0 {
		if err := cc.replaceTags(ctx, HashFieldEntry(key, field), tags); err != nil {
			return v, &TagAssociationError{Key: key, Tags: tags, Err: err}
		}
	}
	return v, nil
}
