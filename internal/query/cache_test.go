package query

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/storage"
	"github.com/mcoot/boardgametracker/internal/storage/memory"
	"github.com/mcoot/boardgametracker/internal/testutil"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Delete(context.Context, ...string) error { return errors.New("connection refused") }
func (brokenStore) DeletePrefix(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}
func (brokenStore) Close() error { return nil }

var _ storage.Store = brokenStore{}

func newCache() *Cache {
	return New(memory.New(), testutil.NopLogger())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "game:1:", Key("game", 1))
	assert.Equal(t, "game:1:stats:", Key("game", model.GameID(1), "stats"))
	assert.NotContains(t, Key("game", 10, "stats"), Key("game", 1))
	assert.Equal(t, "game", Resource(Key("game", 1)))
}

func TestListKey(t *testing.T) {
	assert.Equal(t, "game:list:", ListKey("game", nil))

	a := ListKey("game", url.Values{"state": {"owned"}, "sort": {"title"}})
	b := ListKey("game", url.Values{"sort": {"title"}, "state": {"owned"}})
	c := ListKey("game", url.Values{"state": {"wanted"}})

	assert.Equal(t, a, b, "parameter order must not matter")
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "game:list:")
}

func TestFetchCachesResult(t *testing.T) {
	c := newCache()
	ctx := context.Background()
	calls := 0
	load := func(ctx context.Context) (model.Game, error) {
		calls++
		return model.Game{ID: 3, Title: "Azul"}, nil
	}

	first, err := Get(ctx, c, Key("game", 3), time.Minute, load)
	require.NoError(t, err)
	second, err := Get(ctx, c, Key("game", 3), time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, "Azul", first.Title)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := newCache()
	ctx := context.Background()
	calls := 0
	load := func(ctx context.Context) (model.Game, error) {
		calls++
		if calls == 1 {
			return model.Game{}, model.ErrUnavailable
		}
		return model.Game{ID: 1}, nil
	}

	_, err := Get(ctx, c, Key("game", 1), time.Minute, load)
	assert.ErrorIs(t, err, model.ErrUnavailable)

	game, err := Get(ctx, c, Key("game", 1), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, model.GameID(1), game.ID)
}

func TestInvalidateRemovesPrefixAndNotifies(t *testing.T) {
	c := newCache()
	ctx := context.Background()
	calls := map[string]int{}
	loader := func(key string) func(context.Context) (int, error) {
		return func(context.Context) (int, error) {
			calls[key]++
			return calls[key], nil
		}
	}

	for _, key := range []string{Key("game", 1), Key("game", 1, "stats"), Key("game", 10)} {
		_, err := Get(ctx, c, key, time.Minute, loader(key))
		require.NoError(t, err)
	}

	var notified []string
	c.OnInvalidate(func(prefix string) { notified = append(notified, prefix) })
	c.Invalidate(ctx, Key("game", 1))

	v, _ := Get(ctx, c, Key("game", 1, "stats"), time.Minute, loader(Key("game", 1, "stats")))
	assert.Equal(t, 2, v, "stats must be refetched")
	v, _ = Get(ctx, c, Key("game", 10), time.Minute, loader(Key("game", 10)))
	assert.Equal(t, 1, v, "game 10 must stay cached")
	assert.Equal(t, []string{"game:1:"}, notified)
}

func TestInvalidateRunsAfterCancellation(t *testing.T) {
	c := newCache()
	_, err := Get(context.Background(), c, Key("player", 1), time.Minute, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Invalidate(ctx, Key("player"))

	v, err := Get(context.Background(), c, Key("player", 1), time.Minute, func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestBrokenStoreFallsThrough(t *testing.T) {
	c := New(brokenStore{}, testutil.NopLogger())
	ctx := context.Background()

	v, err := Get(ctx, c, Key("badge", "list"), time.Minute, func(context.Context) ([]string, error) {
		return []string{"firstTry"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"firstTry"}, v)

	c.Invalidate(ctx, Key("badge"))
	assert.Equal(t, int64(3), c.Stats().Errors)
}

func TestConcurrentMissesShareOneLoad(t *testing.T) {
	c := newCache()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Get(context.Background(), c, Key("location", "list"), time.Minute, func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, []int{42, 42, 42, 42, 42}, results)
	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestFetchHonoursCancellation(t *testing.T) {
	c := newCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Get(ctx, c, Key("game", "list"), time.Minute, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvalidateDuringLoadDropsStaleResult(t *testing.T) {
	c := newCache()
	ctx := context.Background()
	key := Key("game", 1)

	var backend atomic.Value
	backend.Store("old")
	read := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, err := Get(ctx, c, key, time.Minute, func(context.Context) (string, error) {
			v := backend.Load().(string)
			close(read)
			<-release
			return v, nil
		})
		assert.NoError(t, err)
		done <- v
	}()

	<-read
	backend.Store("new")
	c.Invalidate(ctx, Key("game"))
	close(release)
	assert.Equal(t, "old", <-done, "the reader that started first still gets its result")

	v, err := Get(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return backend.Load().(string), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestInvalidateDetachesInFlightLoad(t *testing.T) {
	c := newCache()
	ctx := context.Background()
	key := Key("player", 2)

	read := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = Get(ctx, c, key, time.Minute, func(context.Context) (string, error) {
			close(read)
			<-release
			return "old", nil
		})
	}()
	<-read
	c.Invalidate(ctx, Key("player"))

	// A reader arriving after the invalidation does not join the old load
	v, err := Get(ctx, c, key, time.Minute, func(context.Context) (string, error) {
		return "new", nil
	})
	close(release)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestUnrelatedInvalidationKeepsResult(t *testing.T) {
	c := newCache()
	ctx := context.Background()
	key := Key("location", "list")

	read := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := Get(ctx, c, key, time.Minute, func(context.Context) (int, error) {
			close(read)
			<-release
			return 7, nil
		})
		assert.NoError(t, err)
	}()
	<-read
	c.Invalidate(ctx, Key("game"))
	close(release)
	<-done

	var calls atomic.Int32
	v, err := Get(ctx, c, key, time.Minute, func(context.Context) (int, error) {
		calls.Add(1)
		return 8, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Zero(t, calls.Load())
}
