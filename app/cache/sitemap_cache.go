package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lysyi3m/sitemap-comb/app/metrics"
)

// SitemapKey is the only key the sitemap is stored under.
const SitemapKey = "sitemap"

type BuildFunc func(ctx context.Context) (string, error)

// SitemapCache serves the cached sitemap and makes sure at most one build per
// key runs at a time; concurrent misses wait for that build.
type SitemapCache struct {
	store      Store
	ttl        time.Duration
	recorder   metrics.Recorder
	group      singleflight.Group
	generation atomic.Uint64
}

type flightResult struct {
	xml        string
	cached     bool
	generation uint64
}

func NewSitemapCache(store Store, ttl time.Duration, recorder metrics.Recorder) *SitemapCache {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &SitemapCache{
		store:    store,
		ttl:      ttl,
		recorder: recorder,
	}
}

func (c *SitemapCache) Store() Store {
	return c.store
}

// GetOrBuild returns the cached sitemap, building it on a miss. The second
// result reports a cache hit. The build itself is not canceled when ctx is;
// it keeps running for the other waiters and fills the cache. A result built
// before the latest Invalidate is never returned: waiters join the next build
// once the stale one has finished.
func (c *SitemapCache) GetOrBuild(ctx context.Context, build BuildFunc) (string, bool, error) {
	if xml, ok := c.lookup(); ok {
		c.recorder.IncCacheResult(true)
		return xml, true, nil
	}

	buildCtx := context.WithoutCancel(ctx)
	for {
		ch := c.group.DoChan(SitemapKey, func() (interface{}, error) {
			return c.fill(buildCtx, build)
		})

		select {
		case res := <-ch:
			if res.Err != nil {
				c.recorder.IncCacheResult(false)
				return "", false, res.Err
			}
			result := res.Val.(flightResult)
			if result.generation != c.generation.Load() {
				slog.Debug("Sitemap invalidated during build, waiting for a fresh one")
				continue
			}
			c.recorder.IncCacheResult(result.cached)
			return result.xml, result.cached, nil
		case <-ctx.Done():
			c.recorder.IncCacheResult(false)
			return "", false, ctx.Err()
		}
	}
}

// fill runs inside the flight. The generation is read before the store so a
// document cached by an older generation is reported as stale.
func (c *SitemapCache) fill(ctx context.Context, build BuildFunc) (flightResult, error) {
	generation := c.generation.Load()

	if xml, ok := c.lookup(); ok {
		return flightResult{xml: xml, cached: true, generation: generation}, nil
	}

	xml, err := build(ctx)
	if err != nil {
		return flightResult{}, err
	}

	result := flightResult{xml: xml, generation: generation}
	if c.generation.Load() != generation {
		return result, nil
	}

	if err := c.store.Set(SitemapKey, xml, c.ttl); err != nil {
		slog.Warn("Failed to store sitemap in cache", "error", err)
		return result, nil
	}

	// Invalidate may have run between the check and the write
	if c.generation.Load() != generation {
		if err := c.store.Delete(SitemapKey); err != nil {
			slog.Warn("Failed to drop stale sitemap from cache", "error", err)
		}
	}
	return result, nil
}

// Invalidate drops the cached sitemap. A build running at the same time is
// not kept in the cache and its waiters get the next build instead.
func (c *SitemapCache) Invalidate() error {
	c.generation.Add(1)

	if err := c.store.Delete(SitemapKey); err != nil {
		return err
	}

	slog.Info("Sitemap cache invalidated")
	return nil
}

func (c *SitemapCache) lookup() (string, bool) {
	xml, ok, err := c.store.Get(SitemapKey)
	if err != nil {
		slog.Warn("Cache error, rebuilding sitemap", "error", err)
		return "", false
	}
	return xml, ok
}
