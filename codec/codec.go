package codec

// Codec encodes/decodes values V to []byte for storage.
//
// For set and sorted-set members the encoded bytes ARE the member identity:
// the same value must encode to the same bytes on every call, or membership
// checks and tag lookups for that member will miss. Pick a codec with stable
// output for your V (see CBOR's deterministic mode for the map-heavy case).
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
