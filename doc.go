// Package tagcache implements a tag-indexed cache-aside layer on top of Redis.
// Entries of any Redis shape (plain keys, hash fields, set and sorted-set members)
// can be grouped under named tags; tag membership is verified against the live
// entry on every query, so the index is allowed to go stale and heals lazily.
//
// Components:
//   - Cache[V]: typed handle over a shared redis client. Several handles (one per
//     value type) interoperate on the same keyspace and the same tag index.
//   - Codec[V]: (de)serializes V <-> []byte. Msgpack by default.
//   - local.Store: optional in-process byte cache fronting plain-key reads
//     (Ristretto or BigCache); staleness bounded by Options.LocalTTL.
//
// Keys:
//
//	<key>            - caller-owned data keys (never rewritten by tagcache)
//	tag:<ns>:<name>  - one set per tag; members are wire-encoded entry references
//	ref:<ns>:<hash>  - per-entry reverse set of tag names (replace semantics only)
//
// Fetch pattern:
//
//	v, err := cache.Fetch(ctx, k, loadFromDB, tagcache.FetchOptions[User]{
//	    TTL:  time.Minute,
//	    Tags: []string{"user", "active"},
//	})
//
// A tag entry is a weak reference: deleting or expiring the underlying entry never
// updates the index. Membership queries re-check liveness and drop dead references
// as a side effect, so a dangling entry costs a round trip, never a wrong answer.
package tagcache
