package taskdir

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchManifest(ctx context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

func TestParseManifest(t *testing.T) {
	dir := ParseManifest("abc123 ca116\ndef456 ca116 ca117\n\nlonely\n   \n")

	require.Len(t, dir, 2)
	assert.Equal(t, []string{"ca116"}, dir["abc123"])
	assert.Equal(t, []string{"ca116", "ca117"}, dir["def456"])
	_, ok := dir["lonely"]
	assert.False(t, ok, "keys without modules must be dropped")
	for key, modules := range dir {
		assert.NotEmpty(t, modules, key)
	}
}

func TestParseManifestToleratesCarriageReturnsAndExtraSpaces(t *testing.T) {
	dir := ParseManifest("abc123  ca116   ca117\r\nfff ca5980\r\n")

	assert.Equal(t, []string{"ca116", "ca117"}, dir["abc123"])
	assert.Equal(t, []string{"ca5980"}, dir["fff"])
}

func TestLookupReturnsCopy(t *testing.T) {
	dir := ParseManifest("abc123 ca116 ca117")

	modules := dir.Lookup("abc123")
	modules[0] = "changed"

	assert.Equal(t, []string{"ca116", "ca117"}, dir.Lookup("abc123"))
	assert.Nil(t, dir.Lookup("missing"))
}

func TestRefreshWithinWindowFetchesOnce(t *testing.T) {
	fetcher := &fakeFetcher{body: "abc123 ca116\n"}
	cache := NewCache(fetcher, 15*time.Minute)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.SetMockTime(start)

	_, err := cache.Refresh(context.Background(), false)
	require.NoError(t, err)
	cache.SetMockTime(start.Add(14 * time.Minute))
	dir, err := cache.Refresh(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, []string{"ca116"}, dir.Lookup("abc123"))
	assert.True(t, cache.Fresh())
}

func TestRefreshAfterWindowRefetchesAndReplaces(t *testing.T) {
	fetcher := &fakeFetcher{body: "abc123 ca116\n"}
	cache := NewCache(fetcher, 15*time.Minute)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.SetMockTime(start)

	_, err := cache.Refresh(context.Background(), false)
	require.NoError(t, err)

	fetcher.body = "def456 ca117\n"
	cache.SetMockTime(start.Add(15 * time.Minute))
	dir, err := cache.Refresh(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
	assert.Nil(t, dir.Lookup("abc123"), "stale entries are discarded on refresh")
	assert.Equal(t, []string{"ca117"}, dir.Lookup("def456"))
	assert.Equal(t, start.Add(15*time.Minute), cache.LastRefresh())
}

func TestForceRefreshIgnoresWindow(t *testing.T) {
	fetcher := &fakeFetcher{body: "abc123 ca116\n"}
	cache := NewCache(fetcher, time.Hour)

	_, err := cache.Refresh(context.Background(), false)
	require.NoError(t, err)
	_, err = cache.Refresh(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
}

func TestRefreshFailureKeepsDirectoryAndTimestamp(t *testing.T) {
	fetcher := &fakeFetcher{body: "abc123 ca116\n"}
	cache := NewCache(fetcher, 15*time.Minute)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.SetMockTime(start)
	_, err := cache.Refresh(context.Background(), false)
	require.NoError(t, err)

	fetcher.err = errors.New("connection refused")
	cache.SetMockTime(start.Add(20 * time.Minute))
	dir, err := cache.Refresh(context.Background(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrFetch)
	assert.Equal(t, []string{"ca116"}, dir.Lookup("abc123"), "stale directory is the fallback")
	assert.Equal(t, start, cache.LastRefresh())
	assert.False(t, cache.Fresh())

	_, err = cache.Refresh(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, 3, fetcher.calls, "a failed refresh is retried immediately")
}

func TestFirstRefreshFailureLeavesEmptyDirectory(t *testing.T) {
	cache := NewCache(&fakeFetcher{err: errors.New("boom")}, 0)

	dir, err := cache.Refresh(context.Background(), false)

	assert.ErrorIs(t, err, bridge.ErrFetch)
	assert.Empty(t, dir)
	assert.True(t, cache.LastRefresh().IsZero())
	assert.Equal(t, DefaultWindow, cache.Window)
}

func TestRunRefresherStopsWithContext(t *testing.T) {
	fetcher := &fakeFetcher{body: "abc123 ca116\n"}
	cache := NewCache(fetcher, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cache.RunRefresher(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return cache.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}
