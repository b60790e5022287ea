package tagcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Get reads a plain-key entry. A missing key is (zero, false, nil), never an
// error. Bytes that fail to decode surface as *SerializationError.
func (cc *Cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if cc.local != nil {
		if raw, ok := cc.local.Get(key); ok {
			v, err := cc.codec.Decode(raw)
			if err == nil {
				return v, true, nil
			}
			cc.local.Del(key) // wrong shape for this handle; re-read remote
		}
	}
	raw, err := cc.rdb.Get(ctx, key).Bytes()
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
	cc.localWarm(key, raw, 0)
	return v, true, nil
}

// Set writes a plain-key entry. With a non-empty opt.Tags the entry's tag set
// is replaced after the write; a write rejected by opt.When skips tagging.
func (cc *Cache[V]) Set(ctx context.Context, key string, value V, opt SetOptions) error {
	raw, err := cc.codec.Encode(value)
	if err != nil {
		return &SerializationError{Op: "encode", Key: key, Err: err}
	}
	ttl := cc.ttlOrDefault(opt.TTL)
	written, err := cc.setRaw(ctx, key, raw, ttl, opt.When)
	if err != nil {
		return err
	}
	if !written {
		cc.log.Debug("conditional set skipped", Fields{"key": key, "when": opt.When})
		return nil
	}
	cc.localWarm(key, raw, ttl)
	if len(opt.Tags) > 0 {
		if err := cc.replaceTags(ctx, KeyEntry(key), opt.Tags); err != nil {
			return &TagAssociationError{Key: key, Tags: opt.Tags, Err: err}
		}
	}
	return nil
}

func (cc *Cache[V]) setRaw(ctx context.Context, key string, raw []byte, ttl time.Duration, when WriteCondition) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	switch when {
	case IfNotExists:
		return cc.rdb.SetNX(ctx, key, raw, ttl).Result()
	case IfExists:
		return cc.rdb.SetXX(ctx, key, raw, ttl).Result()
	default:
		if err := cc.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
			return false, err
		}
		return true, nil
	}
}

// GetSet atomically replaces the value under key and returns the previous one.
// existed reports whether a previous value was present. Like GETSET, the key's
// TTL is discarded by the replacement.
func (cc *Cache[V]) GetSet(ctx context.Context, key string, value V) (V, bool, error) {
	var zero V
	raw, err := cc.codec.Encode(value)
	if err != nil {
		return zero, false, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	prev, err := cc.rdb.GetSet(ctx, key, raw).Bytes()
	if err == redis.Nil {
		cc.localWarm(key, raw, 0)
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	cc.localWarm(key, raw, 0)
	v, err := cc.codec.Decode(prev)
	if err != nil {
		return zero, true, &SerializationError{Op: "decode", Key: key, Err: err}
	}
	return v, true, nil
}

// Exists reports whether key currently holds a value.
func (cc *Cache[V]) Exists(ctx context.Context, key string) (bool, error) {
	n, err := cc.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Del removes keys of any structure kind and returns how many existed.
// Tag references to removed entries are NOT touched; they decay to dangling
// and are reconciled on the next membership query.
func (cc *Cache[V]) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	cc.localDrop(keys...)
	return cc.rdb.Del(ctx, keys...).Result()
}

// Expire sets a relative TTL on key. ok=false when the key does not exist.
func (cc *Cache[V]) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	cc.localDrop(key)
	return cc.rdb.Expire(ctx, key, ttl).Result()
}

// ExpireAt sets an absolute expiry timestamp on key.
func (cc *Cache[V]) ExpireAt(ctx context.Context, key string, at time.Time) (bool, error) {
	cc.localDrop(key)
	return cc.rdb.ExpireAt(ctx, key, at).Result()
}

// TTL returns the remaining lifetime of key. ok=false means the key is absent
// or has no expiry.
func (cc *Cache[V]) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := cc.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	if d < 0 { // -1 no ttl, -2 no key
		return 0, false, nil
	}
	return d, true, nil
}

// Persist removes the TTL from key. ok=false when the key is absent or had
// no expiry to remove.
func (cc *Cache[V]) Persist(ctx context.Context, key string) (bool, error) {
	return cc.rdb.Persist(ctx, key).Result()
}

// Flush clears the whole database, tag index included.
func (cc *Cache[V]) Flush(ctx context.Context) error {
	if cc.local != nil {
		_ = cc.local.Reset()
	}
	return cc.rdb.FlushDB(ctx).Err()
}
