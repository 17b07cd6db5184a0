// AngelaMos | 2026
// cache_test.go

package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCachesFreshValue(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("categories")
	opts := Options{StaleTime: time.Minute}

	calls := 0
	fn := func(ctx context.Context) (string, error) {
		calls++
		return "v1", nil
	}

	got, err := Fetch(context.Background(), c, key, opts, fn)
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	got, err = Fetch(context.Background(), c, key, opts, fn)
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
	assert.Equal(t, 1, calls)
}

func TestFetchRefetchesAfterStaleTime(t *testing.T) {
	c := NewCache(nil)
	now := time.Now()
	c.now = func() time.Time { return now }

	key := NewKey("storefrontProducts")
	opts := Options{StaleTime: 30 * time.Second}

	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := Fetch(context.Background(), c, key, opts, fn)
	require.NoError(t, err)

	now = now.Add(31 * time.Second)

	got, err := Fetch(context.Background(), c, key, opts, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, 2, calls)
}

func TestZeroStaleTimeAlwaysRefetches(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("isCallerAdmin", "p1")
	opts := Options{}

	calls := 0
	fn := func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	}

	for range 3 {
		_, err := Fetch(context.Background(), c, key, opts, fn)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestInvalidateMarksAllKeysOfOperationStale(t *testing.T) {
	c := NewCache(nil)
	opts := Options{StaleTime: time.Minute}

	calls := map[string]int{}
	fetch := func(key Key) {
		_, err := Fetch(context.Background(), c, key, opts,
			func(ctx context.Context) (string, error) {
				calls[key.String()]++
				return "x", nil
			},
		)
		require.NoError(t, err)
	}

	plain := NewKey("storefrontProducts")
	scoped := NewKey("storefrontProducts", "category", "cs")
	other := NewKey("categories")

	fetch(plain)
	fetch(scoped)
	fetch(other)

	c.Invalidate("storefrontProducts")

	fetch(plain)
	fetch(scoped)
	fetch(other)

	assert.Equal(t, 2, calls[plain.String()])
	assert.Equal(t, 2, calls[scoped.String()])
	assert.Equal(t, 1, calls[other.String()])
}

func TestFailedFetchKeepsExistingEntry(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("categories")
	opts := Options{StaleTime: time.Minute}

	_, err := Fetch(context.Background(), c, key, opts,
		func(ctx context.Context) (string, error) {
			return "good", nil
		},
	)
	require.NoError(t, err)

	c.Invalidate("categories")

	boom := errors.New("backend down")
	_, err = Fetch(context.Background(), c, key, opts,
		func(ctx context.Context) (string, error) {
			return "", boom
		},
	)
	require.ErrorIs(t, err, boom)

	value, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, "good", value)
}

func TestConcurrentFetchesCoalesce(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("adminProducts", "owner")
	opts := Options{StaleTime: time.Minute}

	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	fn := func(ctx context.Context) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return "shared", nil
	}

	const waiters = 5
	results := make(chan string, waiters)
	var wg sync.WaitGroup
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Fetch(context.Background(), c, key, opts, fn)
			assert.NoError(t, err)
			results <- got
		}()
	}

	// Give the goroutines time to pile onto the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for got := range results {
		assert.Equal(t, "shared", got)
	}
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyRetriesWithFixedDelay(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("adminSystemInitialized")
	opts := Options{
		StaleTime: time.Minute,
		Retry:     RetryPolicy{MaxRetries: 2, Delay: time.Millisecond},
	}

	calls := 0
	got, err := Fetch(context.Background(), c, key, opts,
		func(ctx context.Context) (bool, error) {
			calls++
			if calls < 3 {
				return false, errors.New("transient")
			}
			return true, nil
		},
	)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 3, calls)
}

func TestNoRetryWithoutPolicy(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("currentUserProfile", "p1")
	opts := Options{StaleTime: time.Minute}

	calls := 0
	_, err := Fetch(context.Background(), c, key, opts,
		func(ctx context.Context) (*struct{}, error) {
			calls++
			return nil, errors.New("no profile backend")
		},
	)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAwaitFlightHonorsContextCancel(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("slow")
	opts := Options{StaleTime: time.Minute}

	release := make(chan struct{})
	go func() {
		_, _ = Fetch(context.Background(), c, key, opts,
			func(ctx context.Context) (string, error) {
				<-release
				return "late", nil
			},
		)
	}()

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, c, key, opts,
		func(ctx context.Context) (string, error) {
			return "unused", nil
		},
	)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestClearDropsEntries(t *testing.T) {
	c := NewCache(nil)
	key := NewKey("categories")

	_, err := Fetch(context.Background(), c, key,
		Options{StaleTime: time.Minute},
		func(ctx context.Context) (string, error) { return "v", nil },
	)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
