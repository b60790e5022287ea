package tagcache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tagcache/internal/util"
	"github.com/unkn0wn-root/tagcache/internal/wire"
)

// EntryKind says which structure shape a tag entry references.
type EntryKind uint8

const (
	KindKey EntryKind = 1 + iota
	KindHashField
	KindSetMember
	KindSortedSetMember
)

func (k EntryKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindHashField:
		return "hash-field"
	case KindSetMember:
		return "set-member"
	case KindSortedSetMember:
		return "sorted-set-member"
	default:
		return "unknown"
	}
}

// TagEntry is a weak reference to a cache entry: its presence in a tag set
// does not keep the entry alive, and the entry's removal does not clean the
// reference. For member kinds, Field holds the codec-encoded member bytes.
type TagEntry struct {
	Kind  EntryKind
	Key   string
	Field string
}

// KeyEntry references a plain key.
func KeyEntry(key string) TagEntry {
	return TagEntry{Kind: KindKey, Key: key}
}

// HashFieldEntry references one field of a hash.
func HashFieldEntry(key, field string) TagEntry {
	return TagEntry{Kind: KindHashField, Key: key, Field: field}
}

func setMemberEntry(key string, raw []byte) TagEntry {
	return TagEntry{Kind: KindSetMember, Key: key, Field: string(raw)}
}

func sortedSetMemberEntry(key string, raw []byte) TagEntry {
	return TagEntry{Kind: KindSortedSetMember, Key: key, Field: string(raw)}
}

// encode renders the entry in its storage form. Fails with ErrInvalidTagKey
// when the key does not fit the wire layout; nothing about the entry is
// validated beyond that.
func (e TagEntry) encode() ([]byte, error) {
	return wire.EncodeEntry(wire.Entry{Kind: byte(e.Kind), Key: e.Key, Field: e.Field})
}

func entryFromWire(w wire.Entry) TagEntry {
	return TagEntry{Kind: EntryKind(w.Kind), Key: w.Key, Field: w.Field}
}

// refSetKey is the per-entry reverse set listing the tag names of the entry's
// last tagged write. Consulted only to implement replace semantics; never on
// delete or expiry.
func (cc *Cache[V]) refSetKey(encoded []byte) string {
	return util.HashedKey(cc.refPrefix, encoded)
}

// AddTagsToKey adds the plain-key entry to each named tag (idempotent insert;
// existing tag links are kept).
func (cc *Cache[V]) AddTagsToKey(ctx context.Context, key string, tags ...string) error {
	return cc.addTags(ctx, KeyEntry(key), tags)
}

// AddTagsToHashField adds a hash-field entry to each named tag.
func (cc *Cache[V]) AddTagsToHashField(ctx context.Context, key, field string, tags ...string) error {
	return cc.addTags(ctx, HashFieldEntry(key, field), tags)
}

// AddTagsToSetMember adds a set-member entry to each named tag.
func (cc *Cache[V]) AddTagsToSetMember(ctx context.Context, key string, member V, tags ...string) error {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return &SerializationError{Op: "encode", Key: key, Err: err}
	}
	return cc.addTags(ctx, setMemberEntry(key, raw), tags)
}

// AddTagsToSortedSetMember adds a sorted-set-member entry to each named tag.
func (cc *Cache[V]) AddTagsToSortedSetMember(ctx context.Context, key string, member V, tags ...string) error {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return &SerializationError{Op: "encode", Key: key, Err: err}
	}
	return cc.addTags(ctx, sortedSetMemberEntry(key, raw), tags)
}

// IsKeyInTag reports whether the plain-key entry is a live member of ANY of
// the given tags.
func (cc *Cache[V]) IsKeyInTag(ctx context.Context, key string, tags ...string) (bool, error) {
	return cc.isInTag(ctx, KeyEntry(key), tags)
}

// IsHashFieldInTag reports whether the hash-field entry is a live member of
// any of the given tags.
func (cc *Cache[V]) IsHashFieldInTag(ctx context.Context, key, field string, tags ...string) (bool, error) {
	return cc.isInTag(ctx, HashFieldEntry(key, field), tags)
}

// IsSetMemberInTag reports whether the set member is a live member of any of
// the given tags.
func (cc *Cache[V]) IsSetMemberInTag(ctx context.Context, key string, member V, tags ...string) (bool, error) {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return false, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	return cc.isInTag(ctx, setMemberEntry(key, raw), tags)
}

// IsSortedSetMemberInTag reports whether the sorted-set member is a live
// member of any of the given tags.
func (cc *Cache[V]) IsSortedSetMemberInTag(ctx context.Context, key string, member V, tags ...string) (bool, error) {
	raw, err := cc.codec.Encode(member)
	if err != nil {
		return false, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	return cc.isInTag(ctx, sortedSetMemberEntry(key, raw), tags)
}

// TagMembers lists the live entries of a tag. Dead and undecodable references
// are dropped from the index as a side effect.
func (cc *Cache[V]) TagMembers(ctx context.Context, tag string) ([]TagEntry, error) {
	tk := cc.tagSetKey(tag)
	raws, err := cc.rdb.SMembers(ctx, tk).Result()
	if err != nil {
		return nil, err
	}
	var out []TagEntry
	for _, r := range raws {
		w, err := wire.DecodeEntry([]byte(r))
		if err != nil {
			_ = cc.rdb.SRem(ctx, tk, r).Err()
			cc.hooks.CorruptTagEntry(tag)
			continue
		}
		e := entryFromWire(w)
		live, err := cc.alive(ctx, e)
		if err != nil {
			return nil, err
		}
		if !live {
			_ = cc.rdb.SRem(ctx, tk, r).Err()
			cc.hooks.DanglingTagEntry(tag, e)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// InvalidateTag deletes every entry referenced by the given tags (the key, the
// hash field, or the member, depending on kind), then the tag sets themselves.
// Returns the number of references processed.
func (cc *Cache[V]) InvalidateTag(ctx context.Context, tags ...string) (int64, error) {
	var total int64
	for _, tag := range tags {
		tk := cc.tagSetKey(tag)
		raws, err := cc.rdb.SMembers(ctx, tk).Result()
		if err != nil {
			return total, err
		}
		if len(raws) > 0 {
			_, err = cc.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
				for _, r := range raws {
					w, err := wire.DecodeEntry([]byte(r))
					if err != nil {
						cc.hooks.CorruptTagEntry(tag)
						continue
					}
					switch EntryKind(w.Kind) {
					case KindKey:
						cc.localDrop(w.Key)
						p.Del(ctx, w.Key)
					case KindHashField:
						p.HDel(ctx, w.Key, w.Field)
					case KindSetMember:
						p.SRem(ctx, w.Key, []byte(w.Field))
					case KindSortedSetMember:
						p.ZRem(ctx, w.Key, []byte(w.Field))
					}
					total++
				}
				return nil
			})
			if err != nil {
				return total, err
			}
		}
		if err := cc.rdb.Del(ctx, tk).Err(); err != nil {
			return total, err
		}
		cc.log.Debug("tag invalidated", Fields{"tag": tag, "entries": len(raws)})
	}
	return total, nil
}

// addTags is the idempotent insert: entry joins each tag set and the tag names
// join the entry's reverse set.
func (cc *Cache[V]) addTags(ctx context.Context, e TagEntry, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	enc, err := e.encode()
	if err != nil {
		return err
	}
	names := make([]any, len(tags))
	for i, t := range tags {
		names[i] = t
	}
	_, err = cc.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, t := range tags {
			p.SAdd(ctx, cc.tagSetKey(t), enc)
		}
		p.SAdd(ctx, cc.refSetKey(enc), names...)
		return nil
	})
	return err
}

// replaceTags implements last-writer-wins for tagged writes: the entry is
// detached from every tag of its previous write that the new list omits, then
// attached to the new list. The reverse set is rewritten to the new list.
func (cc *Cache[V]) replaceTags(ctx context.Context, e TagEntry, tags []string) error {
	enc, err := e.encode()
	if err != nil {
		return err
	}
	ref := cc.refSetKey(enc)

	prev, err := cc.rdb.SMembers(ctx, ref).Result()
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		keep[t] = struct{}{}
	}
	var removed []string
	for _, t := range prev {
		if _, ok := keep[t]; !ok {
			removed = append(removed, t)
		}
	}

	names := make([]any, len(tags))
	for i, t := range tags {
		names[i] = t
	}
	_, err = cc.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, t := range removed {
			p.SRem(ctx, cc.tagSetKey(t), enc)
		}
		for _, t := range tags {
			p.SAdd(ctx, cc.tagSetKey(t), enc)
		}
		p.Del(ctx, ref)
		if len(names) > 0 {
			p.SAdd(ctx, ref, names...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		cc.hooks.TagsReplaced(e, len(removed))
	}
	return nil
}

// isInTag is the OR-membership query. Liveness is checked at most once per
// call; a dead entry is detached from every supplied tag that still lists it.
func (cc *Cache[V]) isInTag(ctx context.Context, e TagEntry, tags []string) (bool, error) {
	if len(tags) == 0 {
		return false, nil
	}
	enc, err := e.encode()
	if err != nil {
		return false, err
	}
	var live *bool
	for _, t := range tags {
		tk := cc.tagSetKey(t)
		member, err := cc.rdb.SIsMember(ctx, tk, enc).Result()
		if err != nil {
			return false, err
		}
		if !member {
			continue
		}
		if live == nil {
			ok, err := cc.alive(ctx, e)
			if err != nil {
				return false, err
			}
			live = &ok
		}
		if *live {
			return true, nil
		}
		if err := cc.rdb.SRem(ctx, tk, enc).Err(); err == nil {
			cc.hooks.DanglingTagEntry(t, e)
		}
	}
	return false, nil
}

// alive resolves the kind-specific existence check.
func (cc *Cache[V]) alive(ctx context.Context, e TagEntry) (bool, error) {
	switch e.Kind {
	case KindKey:
		n, err := cc.rdb.Exists(ctx, e.Key).Result()
		return n > 0, err
	case KindHashField:
		return cc.rdb.HExists(ctx, e.Key, e.Field).Result()
	case KindSetMember:
		return cc.rdb.SIsMember(ctx, e.Key, []byte(e.Field)).Result()
	case KindSortedSetMember:
		err := cc.rdb.ZScore(ctx, e.Key, e.Field).Err()
		if err == redis.Nil {
			return false, nil
		}
		return err == nil, err
	default:
		return false, nil
	}
}
