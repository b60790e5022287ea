package tagcache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// AddToSet adds a member to the set at key. Members are serialized through the
// handle's codec, so the same V round-trips for membership checks and tag
// queries. opt.When is ignored (SADD is create-or-keep by nature); opt.TTL
// applies to the whole key.
func (cc *Cache[V]) AddToSet(ctx context.Context, key string, member V, opt SetOptions) error {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return &SerializationError{Op: "encode", Key: key, Err: err}
	}
	if err := cc.rdb.SAdd(ctx, key, raw).Err(); err != nil {
		return err
	}
	if ttl := cc.ttlOrDefault(opt.TTL); ttl > 0 {
		if err := cc.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return err
		}
	}
	if len(opt.Tags) > 0 {
		if err := cc.replaceTags(ctx, setMemberEntry(key, raw), opt.Tags); err != nil {
			return &TagAssociationError{Key: key, Tags: opt.Tags, Err: err}
		}
	}
	return nil
}

// RemoveFromSet removes a member and reports whether it was present.
func (cc *Cache[V]) RemoveFromSet(ctx context.Context, key string, member V) (bool, error) {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return false, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	n, err := cc.rdb.SRem(ctx, key, raw).Result()
	return n > 0, err
}

// AddToSortedSet adds a member with a score to the sorted set at key. Score
// ties are broken by the store's lexical member ordering. Options behave as in
// AddToSet.
func (cc *Cache[V]) AddToSortedSet(ctx context.Context, key string, score float64, member V, opt SetOptions) error {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return &SerializationError{Op: "encode", Key: key, Err: err}
	}
	if err := cc.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: raw}).Err(); err != nil {
		return err
	}
	if ttl := cc.ttlOrDefault(opt.TTL); ttl > 0 {
		if err := cc.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return err
		}
	}
	if len(opt.Tags) > 0 {
		if err := cc.replaceTags(ctx, sortedSetMemberEntry(key, raw), opt.Tags); err != nil {
			return &TagAssociationError{Key: key, Tags: opt.Tags, Err: err}
		}
	}
	return nil
}

// RemoveFromSortedSet removes a member and reports whether it was present.
func (cc *Cache[V]) RemoveFromSortedSet(ctx context.Context, key string, member V) (bool, error) {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return false, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	n, err := cc.rdb.ZRem(ctx, key, raw).Result()
	return n > 0, err
}

// HyperLogLogAdd registers items in the probabilistic cardinality structure at
// key, creating it on first use. changed reports whether the estimate moved.
func (cc *Cache[V]) HyperLogLogAdd(ctx context.Context, key string, items ...V) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	members := make([]any, len(items))
	for i, it := range items {
		raw, err := cc.codec.Encode(it)
		if err != nil {
			return false, &SerializationError{Op: "encode", Key: key, Err: err}
		}
		members[i] = raw
	}
	n, err := cc.rdb.PFAdd(ctx, key, members...).Result()
	return n > 0, err
}

// HyperLogLogCount returns the approximate number of distinct items added at
// key, within the structure's standard error (~0.81% for Redis HLL). A missing
// key counts as zero.
func (cc *Cache[V]) HyperLogLogCount(ctx context.Context, key string) (int64, error) {
	return cc.rdb.PFCount(ctx, key).Result()
}
