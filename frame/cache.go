package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultCapacity bounds cache memory to about two seconds of frames.
	DefaultCapacity = 60

	// Granularity is the cache key quantum: one frame at 30 fps. Requests
	// inside the same 33ms window share a cache entry.
	Granularity = 33 * time.Millisecond

	// maxConcurrentPreloads caps background preload goroutines.
	maxConcurrentPreloads = 2
)

// ErrCacheClosed is returned by any call into a closed cache.
var ErrCacheClosed = errors.New("frame cache is closed")

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	DecodeErrors uint64
}

// Cache serves decoded frames for source timestamps, bounding memory with
// LRU eviction and serializing all decoder access behind a single lock
// (the decoder keeps one file handle and is not reentrant). The LRU index
// itself is safe for concurrent use, so cache hits never wait on an
// in-flight decode.
type Cache struct {
	dec Decoder
	log *slog.Logger

	index *lru.Cache[int64, *Frame]

	// decodeMu serializes decoder calls. Close acquires it before tearing
	// the decoder down so no decode is ever in flight during disposal.
	decodeMu sync.Mutex

	closed     atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	preloadSem chan struct{}
	preloadMu  sync.Mutex // orders preload launches against Close
	preloadWG  sync.WaitGroup

	hits         atomic.Uint64
	misses       atomic.Uint64
	evictions    atomic.Uint64
	decodeErrors atomic.Uint64
}

// NewCache returns a cache over dec holding at most capacity frames.
// Capacities below 1 fall back to DefaultCapacity.
func NewCache(dec Decoder, capacity int, log *slog.Logger) (*Cache, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Cache{
		dec:        dec,
		log:        log,
		preloadSem: make(chan struct{}, maxConcurrentPreloads),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	index, err := lru.NewWithEvict(capacity, func(_ int64, f *Frame) {
		c.evictions.Add(1)
		f.Release()
	})
	if err != nil {
		return nil, fmt.Errorf("create frame cache: %w", err)
	}
	c.index = index
	return c, nil
}

// quantize rounds t down to the cache granularity.
func quantize(t time.Duration) int64 {
	return int64(t / Granularity)
}

// GetFrame returns the frame for t, decoding on a miss. All requests inside
// the same granularity window map to one cache key, so scrub positions a few
// milliseconds apart hit the same entry. Decode failures are returned as-is
// and never retried here; a stale decoder after a failed seek should not be
// masked from the caller.
func (c *Cache) GetFrame(t time.Duration) (*Frame, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	if t < 0 {
		return nil, fmt.Errorf("get frame at negative time %s", t)
	}

	key := quantize(t)
	if f, ok := c.index.Get(key); ok {
		c.hits.Add(1)
		return f, nil
	}

	c.decodeMu.Lock()
	defer c.decodeMu.Unlock()

	// Re-check after waiting: the cache may have been closed, or another
	// caller may have decoded this key while we held the line.
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	if f, ok := c.index.Get(key); ok {
		c.hits.Add(1)
		return f, nil
	}

	c.misses.Add(1)
	f, err := c.dec.DecodeFrameAt(time.Duration(key) * Granularity)
	if err != nil {
		c.decodeErrors.Add(1)
		return nil, err
	}
	c.index.Add(key, f)
	return f, nil
}

// Contains reports whether the quantized key for t is cached, without
// promoting the entry.
func (c *Cache) Contains(t time.Duration) bool {
	return c.index.Contains(quantize(t))
}

// Len returns the number of cached frames.
func (c *Cache) Len() int {
	return c.index.Len()
}

// Preload decodes the radius frames on either side of center in the
// background so playback and scrubbing around the current position stay on
// the hit path. Fire-and-forget: failures are logged, cancellation (cache
// closed) is silent, and nothing propagates to the caller.
func (c *Cache) Preload(center time.Duration, radius int) {
	if c.closed.Load() || radius < 1 {
		return
	}

	// Drop rather than queue when all preload slots are busy; playback
	// re-requests around the new position on the next tick anyway.
	select {
	case c.preloadSem <- struct{}{}:
	default:
		return
	}

	c.preloadMu.Lock()
	if c.closed.Load() {
		c.preloadMu.Unlock()
		<-c.preloadSem
		return
	}
	c.preloadWG.Add(1)
	c.preloadMu.Unlock()
	go func() {
		defer c.preloadWG.Done()
		defer func() { <-c.preloadSem }()

		for offset := -radius; offset <= radius; offset++ {
			if c.ctx.Err() != nil {
				return
			}
			t := center + time.Duration(offset)*Granularity
			if t < 0 || c.Contains(t) {
				continue
			}
			if _, err := c.GetFrame(t); err != nil && !errors.Is(err, ErrCacheClosed) {
				c.log.Warn("preload decode failed", "time", t, "error", err)
			}
		}
	}()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Evictions:    c.evictions.Load(),
		DecodeErrors: c.decodeErrors.Load(),
	}
}

// Close tears down the cache: it marks the cache closed, waits for any
// in-flight decode by taking the decode lock, closes the decoder, and
// releases every cached frame. Safe to call more than once; calls into the
// cache after Close fail with ErrCacheClosed.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()

	c.decodeMu.Lock()
	err := c.dec.Close()
	c.index.Purge()
	c.decodeMu.Unlock()

	// Stray preload goroutines fail fast on the closed flag. Taking
	// preloadMu here orders the wait after any launch that raced the flag.
	c.preloadMu.Lock()
	c.preloadWG.Wait()
	c.preloadMu.Unlock()
	return err
}
