package tagcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchProducesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[user](t, Options[user]{})

	var calls int32
	produce := func() (user, error) {
		atomic.AddInt32(&calls, 1)
		return user{ID: "7", Name: "Grace"}, nil
	}

	got, err := cc.Fetch(ctx, "u:7", produce, FetchOptions[user]{})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// Hit: producer is not consulted again.
	got, err = cc.Fetch(ctx, "u:7", produce, FetchOptions[user]{})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetchHitIgnoresProducerAndTags(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	require.NoError(t, cc.Set(ctx, "k", "cached", SetOptions{}))

	got, err := cc.Fetch(ctx, "k", func() (string, error) {
		t.Fatal("producer must not run on a hit")
		return "", nil
	}, FetchOptions[string]{Tags: []string{"never"}})
	require.NoError(t, err)
	assert.Equal(t, "cached", got)

	in, err := cc.IsKeyInTag(ctx, "k", "never")
	require.NoError(t, err)
	assert.False(t, in)
}

func TestFetchProducerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	boom := errors.New("db down")
	_, err := cc.Fetch(ctx, "k", func() (string, error) { return "", boom }, FetchOptions[string]{})
	require.ErrorIs(t, err, boom)

	// Nothing was cached and no tags were written.
	_, ok, err := cc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchWithFixedTags(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{})

	_, err := cc.Fetch(ctx, "k", func() (string, error) { return "v", nil },
		FetchOptions[string]{Tags: []string{"t1"}, TTL: time.Minute})
	require.NoError(t, err)

	in, err := cc.IsKeyInTag(ctx, "k", "t1")
	require.NoError(t, err)
	assert.True(t, in)

	d, ok, err := cc.TTL(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, d, time.Duration(0))
}

func TestFetchTagsForDerivesFromValue(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[user](t, Options[user]{})

	_, err := cc.Fetch(ctx, "u:9", func() (user, error) {
		return user{ID: "9", Name: "Linus"}, nil
	}, FetchOptions[user]{
		TagsFor: func(u user) []string { return []string{"name:" + u.Name} },
	})
	require.NoError(t, err)

	in, err := cc.IsKeyInTag(ctx, "u:9", "name:Linus")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestFetchHashed(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[int](t, Options[int]{})

	var calls int32
	produce := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	got, err := cc.FetchHashed(ctx, "cart:1", "sku:42", produce,
		FetchOptions[int]{Tags: []string{"sale"}})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = cc.FetchHashed(ctx, "cart:1", "sku:42", produce, FetchOptions[int]{})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	in, err := cc.IsHashFieldInTag(ctx, "cart:1", "sku:42", "sale")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestFetchSingleFlightDedupes(t *testing.T) {
	ctx := context.Background()
	_, cc := newTestCache[string](t, Options[string]{SingleFlight: true})

	var calls int32
	release := make(chan struct{})
	produce := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v", nil
	}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			got, err := cc.Fetch(ctx, "k", produce, FetchOptions[string]{})
			assert.NoError(t, err)
			assert.Equal(t, "v", got)
		}()
	}
	// Let every goroutine observe the miss before the one producer finishes.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
