package tagcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHashedGetHashed(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[user](t, Options[user]{})

	alice := user{ID: "1", Name: "alice"}
	require.NoError(t, cc.SetHashed(ctx, "users", "1", alice, SetOptions{}))

	got, ok, err := cc.GetHashed(ctx, "users", "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alice, got)

	_, ok, err = cc.GetHashed(ctx, "users", "2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = cc.GetHashed(ctx, "nosuchhash", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetHashedTTLCoversWholeKey(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	require.NoError(t, cc.SetHashed(ctx, "h", "f1", "a", SetOptions{TTL: time.Minute}))

	d, ok, err := cc.TTL(ctx, "h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, d, time.Duration(0))
	assert.LessOrEqual(t, d, time.Minute)

	// A later field write without TTL leaves the key's deadline alone.
	require.NoError(t, cc.SetHashed(ctx, "h", "f2", "b", SetOptions{}))
	d2, ok, err := cc.TTL(ctx, "h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.LessOrEqual(t, d2, time.Minute)
}

func TestDelHashedLeavesSiblings(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	require.NoError(t, cc.SetHashed(ctx, "h", "f1", "a", SetOptions{}))
	require.NoError(t, cc.SetHashed(ctx, "h", "f2", "b", SetOptions{}))

	removed, err := cc.DelHashed(ctx, "h", "f1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = cc.DelHashed(ctx, "h", "f1")
	require.NoError(t, err)
	assert.False(t, removed)

	v, ok, err := cc.GetHashed(ctx, "h", "f2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestConditionalSetHashed(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	// IfNotExists wins only once.
	require.NoError(t, cc.SetHashed(ctx, "h", "f", "v1", SetOptions{When: IfNotExists}))
	require.NoError(t, cc.SetHashed(ctx, "h", "f", "v2", SetOptions{When: IfNotExists}))
	v, _, err := cc.GetHashed(ctx, "h", "f")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	// IfExists on an absent field is a no-op.
	require.NoError(t, cc.SetHashed(ctx, "h", "g", "x", SetOptions{When: IfExists}))
	_, ok, err := cc.GetHashed(ctx, "h", "g")
	require.NoError(t, err)
	assert.False(t, ok)

	// IfExists on a present field replaces it.
	require.NoError(t, cc.SetHashed(ctx, "h", "f", "v3", SetOptions{When: IfExists}))
	v, _, err = cc.GetHashed(ctx, "h", "f")
	require.NoError(t, err)
	assert.Equal(t, "v3", v)
}

func TestGetHashedMultiPositional(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[int](t, Options[int]{})

	require.NoError(t, cc.SetHashed(ctx, "h", "a", 1, SetOptions{}))
	require.NoError(t, cc.SetHashed(ctx, "h", "c", 3, SetOptions{}))

	vals, err := cc.GetHashedMulti(ctx, "h", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 3}, vals)

	vals, err = cc.GetHashedMulti(ctx, "h")
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestGetAllHashed(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	require.NoError(t, cc.SetHashed(ctx, "h", "f1", "a", SetOptions{}))
	require.NoError(t, cc.SetHashed(ctx, "h", "f2", "b", SetOptions{}))

	m, err := cc.GetAllHashed(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "a", "f2": "b"}, m)

	m, err = cc.GetAllHashed(ctx, "nosuchhash")
	require.NoError(t, err)
	assert.Empty(t, m)
}
