package tagcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetHashed reads one field of a hash. Missing key or field is
// (zero, false, nil).
func (cc *Cache[V]) GetHashed(ctx context.Context, key, field string) (V, bool, error) {
	var zero V
	raw, err := cc.rdb.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	v, err := cc.codec.Decode(raw)
	if err != nil {
		return zero, false, &SerializationError{Op: "decode", Key: key, Err: err}
	}
	return v, true, nil
}

// SetHashed writes one field of a hash. opt.TTL refreshes expiry for the WHOLE
// key: every field sharing the hash gets the new deadline. Conditions apply to
// the field; IfNotExists maps to HSETNX (atomic), IfExists is a check-then-set
// and can race with concurrent writers.
func (cc *Cache[V]) SetHashed(ctx context.Context, key, field string, value V, opt SetOptions) error {
	raw, err := cc.codec.Encode(value)
	if err != nil {
		return &SerializationError{Op: "encode", Key: key, Err: err}
	}
	ttl := cc.ttlOrDefault(opt.TTL)
	written, err := cc.setHashedRaw(ctx, key, field, raw, ttl, opt.When)
	if err != nil {
		return err
	}
	if !written {
		cc.log.Debug("conditional hash set skipped", Fields{"key": key, "field": field, "when": opt.When})
		return nil
	}
	if len(opt.Tags) > 0 {
		if err := cc.replaceTags(ctx, HashFieldEntry(key, field), opt.Tags); err != nil {
			return &TagAssociationError{Key: key, Tags: opt.Tags, Err: err}
		}
	}
	return nil
}

func (cc *Cache[V]) setHashedRaw(ctx context.Context, key, field string, raw []byte, ttl time.Duration, when WriteCondition) (bool, error) {
	switch when {
	case IfNotExists:
		ok, err := cc.rdb.HSetNX(ctx, key, field, raw).Result()
		if err != nil || !ok {
			return false, err
		}
	case IfExists:
		ok, err := cc.rdb.HExists(ctx, key, field).Result()
		if err != nil || !ok {
			return false, err
		}
		if err := cc.rdb.HSet(ctx, key, field, raw).Err(); err != nil {
			return false, err
		}
	default:
		if err := cc.rdb.HSet(ctx, key, field, raw).Err(); err != nil {
			return false, err
		}
	}
	if ttl > 0 {
		if err := cc.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// GetHashedMulti reads several fields in one round trip. The result is
// positionally aligned with fields; missing fields hold the zero value of V.
func (cc *Cache[V]) GetHashedMulti(ctx context.Context, key string, fields ...string) ([]V, error) {
	out := make([]V, len(fields))
	if len(fields) == 0 {
		return out, nil
	}
	vals, err := cc.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, raw := range vals {
		s, ok := raw.(string)
		if !ok {
			continue // absent field keeps the zero value
		}
		v, err := cc.codec.Decode([]byte(s))
		if err != nil {
			return nil, &SerializationError{Op: "decode", Key: key, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// GetAllHashed returns every field of a hash. A missing key yields an empty
// map, not an error.
func (cc *Cache[V]) GetAllHashed(ctx context.Context, key string) (map[string]V, error) {
	m, err := cc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, len(m))
	for f, s := range m {
		v, err := cc.codec.Decode([]byte(s))
		if err != nil {
			return nil, &SerializationError{Op: "decode", Key: key, Err: err}
		}
		out[f] = v
	}
	return out, nil
}

// DelHashed removes one field and reports whether it existed. Sibling fields
// and the key's TTL are untouched.
func (cc *Cache[V]) DelHashed(ctx context.Context, key, field string) (bool, error) {
	n, err := cc.rdb.HDel(ctx, key, field).Result()
	return n > 0, err
}
