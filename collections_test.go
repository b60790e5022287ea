package tagcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAddRemove(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[user](t, Options[user]{})

	alice := user{ID: "1", Name: "alice"}
	bob := user{ID: "2", Name: "bob"}

	require.NoError(t, cc.AddToSet(ctx, "team", alice, SetOptions{}))
	require.NoError(t, cc.AddToSet(ctx, "team", bob, SetOptions{}))

	// Adding the same member again is a no-op.
	require.NoError(t, cc.AddToSet(ctx, "team", alice, SetOptions{}))

	n, err := cc.rdb.SCard(ctx, "team").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	removed, err := cc.RemoveFromSet(ctx, "team", alice)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = cc.RemoveFromSet(ctx, "team", alice)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetTTLAppliesToKey(t *testing.T) {
	ctx := context.Background()
	mr, cc := newTestCache[string](t, Options[string]{})

	require.NoError(t, cc.AddToSet(ctx, "s", "m", SetOptions{TTL: time.Second}))

	d, ok, err := cc.TTL(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, d, time.Duration(0))

	mr.FastForward(2 * time.Second)
	ok, err = cc.Exists(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSortedSetAddRemove(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	require.NoError(t, cc.AddToSortedSet(ctx, "board", 10, "alice", SetOptions{}))
	require.NoError(t, cc.AddToSortedSet(ctx, "board", 20, "bob", SetOptions{}))

	// Re-adding with a new score updates in place.
	require.NoError(t, cc.AddToSortedSet(ctx, "board", 30, "alice", SetOptions{}))
	n, err := cc.rdb.ZCard(ctx, "board").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	removed, err := cc.RemoveFromSortedSet(ctx, "board", "alice")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = cc.RemoveFromSortedSet(ctx, "board", "carol")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestHyperLogLogCountWithinErrorBound(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	const n = 1000
	batch := make([]string, 0, 100)
	for i := 0; i < n; i++ {
		batch = append(batch, fmt.Sprintf("visitor-%d", i))
		if len(batch) == cap(batch) {
			_, err := cc.HyperLogLogAdd(ctx, "visitors", batch...)
			require.NoError(t, err)
			batch = batch[:0]
		}
	}

	// Duplicates must not move the estimate meaningfully.
	_, err := cc.HyperLogLogAdd(ctx, "visitors", "visitor-0", "visitor-1")
	require.NoError(t, err)

	count, err := cc.HyperLogLogCount(ctx, "visitors")
	require.NoError(t, err)
	assert.InDelta(t, n, count, n*0.03)
}

func TestHyperLogLogMissingKey(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	count, err := cc.HyperLogLogCount(ctx, "nosuchkey")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	changed, err := cc.HyperLogLogAdd(ctx, "hll")
	require.NoError(t, err)
	assert.False(t, changed)
}
