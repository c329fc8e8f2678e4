package taskdir

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
)

const DefaultWindow = 15 * time.Minute

type Fetcher interface {
	FetchManifest(ctx context.Context) (string, error)
}

type Cache struct {
	Fetcher  Fetcher
	Window   time.Duration
	Counters *telemetry.Counters

	mu          sync.Mutex
	dir         Directory
	lastRefresh time.Time
	mockTime    atomic.Pointer[time.Time]
}

func NewCache(fetcher Fetcher, window time.Duration) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache{
		Fetcher: fetcher,
		Window:  window,
		dir:     make(Directory),
	}
}

// Refresh returns the current directory, fetching a new manifest first when force is
// set or the freshness window has elapsed. On fetch failure the previous directory is
// returned together with the error and the freshness timestamp is left as it was.
// The returned directory must not be modified.
func (c *Cache) Refresh(ctx context.Context, force bool) (Directory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.freshLocked() {
		return c.dir, nil
	}

	c.Counters.Refresh(ctx)
	text, err := c.Fetcher.FetchManifest(ctx)
	if err != nil {
		c.Counters.RefreshFailed(ctx)
		if !errors.Is(err, bridge.ErrFetch) {
			err = bridge.NewError(bridge.Fetch, "Failed to fetch tasks.", err)
		}
		return c.dir, err
	}

	c.dir = ParseManifest(text)
	c.lastRefresh = c.GetTime()
	telemetry.Log("task directory refreshed", slog.LevelDebug, "tasks", len(c.dir))
	return c.dir, nil
}

func (c *Cache) Lookup(key string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir.Lookup(key)
}

func (c *Cache) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freshLocked()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dir)
}

func (c *Cache) LastRefresh() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh
}

func (c *Cache) freshLocked() bool {
	if c.lastRefresh.IsZero() {
		return false
	}
	return c.GetTime().Sub(c.lastRefresh) < c.Window
}
