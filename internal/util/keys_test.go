package util

import "testing"

func TestHashedKey(t *testing.T) {
	a := HashedKey("ref:tc:", []byte("cart:1"))
	b := HashedKey("ref:tc:", []byte("cart:1"))
	c := HashedKey("ref:tc:", []byte("cart:2"))

	if a != b {
		t.Fatalf("not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("distinct inputs collided: %q", a)
	}
	if len(a) != len("ref:tc:")+16 {
		t.Fatalf("unexpected length %d for %q", len(a), a)
	}
	if a[:7] != "ref:tc:" {
		t.Fatalf("missing prefix in %q", a)
	}
}
