package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("tagcache: corrupt tag entry")
	ErrKeySize = errors.New("tagcache: tag entry key must be 1..65535 bytes")
	magic4     = [...]byte{'T', 'A', 'G', 'E'}
)

// Entry is the storage form of a tag reference. Kind is opaque to this
// package; Field may be empty (plain keys) or hold raw member bytes.
type Entry struct {
	Kind  byte
	Key   string
	Field string
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | kind(1) | klen(u16 be) | key(klen) | flen(u32 be) | field(flen)
//
// The key length field is 16 bits, so keys outside 1..65535 bytes cannot be
// represented and fail with ErrKeySize. The store itself accepts such keys;
// the caller decides how to surface the mismatch.
func EncodeEntry(e Entry) ([]byte, error) {
	if l := len(e.Key); l == 0 || l > 0xFFFF {
		return nil, ErrKeySize
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 2 + len(e.Key) + 4 + len(e.Field))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(e.Kind)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint16(u2[:], uint16(len(e.Key)))
	buf.Write(u2[:])
	buf.WriteString(e.Key)

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Field)))
	buf.Write(u4[:])
	buf.WriteString(e.Field)

	return buf.Bytes(), nil
}

// DecodeEntry is strict: short buffers, bad headers, overlong lengths and
// trailing bytes all fail with ErrCorrupt. Tag sets are a keyspace foreign
// writers can scribble into; anything unparsable is treated as garbage to
// collect, never as data.
func DecodeEntry(b []byte) (Entry, error) {
	const hdr = 4 + 1 + 1 + 2
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Entry{}, ErrCorrupt
	}
	kind := b[5]

	off := 6
	klen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if klen == 0 || klen > len(b)-off {
		return Entry{}, ErrCorrupt
	}
	key := b[off : off+klen]
	off += klen

	if off+4 > len(b) {
		return Entry{}, ErrCorrupt
	}
	flen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if flen < 0 || flen != len(b)-off {
		return Entry{}, ErrCorrupt
	}

	return Entry{
		Kind:  kind,
		Key:   string(key),
		Field: string(b[off : off+flen]),
	}, nil
}
