package tagcache

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/tagcache/internal/wire"
)

// ErrInvalidTagKey reports a tag operation on a key the entry encoding cannot
// represent: empty, or longer than 65535 bytes. The store accepts such keys
// for plain reads and writes; only tagging is off the table. When a tagged
// write trips this, the value write has already happened and the error arrives
// wrapped in *TagAssociationError.
var ErrInvalidTagKey = wire.ErrKeySize

// SerializationError wraps a codec failure. Encode failures leave nothing
// written; decode failures mean the stored bytes do not match the handle's
// value type.
type SerializationError struct {
	Op  string // "encode" or "decode"
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("tagcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// TagAssociationError reports that a value write succeeded but the follow-up
// tag index write failed. The value IS cached; the tags are not durable. The
// two steps are never atomic, so callers treating tags as advisory can ignore
// this error class.
type TagAssociationError struct {
	Key  string
	Tags []string
	Err  error
}

func (e *TagAssociationError) Error() string {
	return fmt.Sprintf("tagcache: %q written but tag association failed (tags=%s): %v",
		e.Key, strings.Join(e.Tags, ","), e.Err)
}

func (e *TagAssociationError) Unwrap() error { return e.Err }
