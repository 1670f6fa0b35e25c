// Package throttle rate-limits outbound lyrics-site requests.
package throttle

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// windowDuration is the fixed sliding window for the per-site limit (always 1 minute)
	windowDuration = 60 * time.Second
	// maxTrackedKeys bounds how many site keys the limiter remembers
	maxTrackedKeys = 64
)

// Limiter provides per-site sliding window rate limiting. Lyrics sites block
// scrapers that hammer them, so every provider request passes through here
// before it goes out. An LRU keeps the tracked key set bounded.
type Limiter struct {
	limitPerMinute int
	entries        *lru.Cache[string, *siteWindow]
	mutex          sync.Mutex
}

// siteWindow tracks request timestamps for a single site key
type siteWindow struct {
	timestamps []time.Time
}

// New creates a Limiter with the specified per-minute limit. A non-positive
// limit disables throttling entirely.
func New(limitPerMinute int) *Limiter {
	cache, _ := lru.New[string, *siteWindow](maxTrackedKeys)
	return &Limiter{
		limitPerMinute: limitPerMinute,
		entries:        cache,
	}
}

// Allow reports whether another request for key fits inside the window,
// recording the request when it does.
func (l *Limiter) Allow(key string) bool {
	if l.limitPerMinute <= 0 {
		return true
	}

	now := time.Now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry, exists := l.entries.Get(key)
	if !exists {
		entry = &siteWindow{
			timestamps: make([]time.Time, 0, l.limitPerMinute+1),
		}
		l.entries.Add(key, entry)
	}

	// Remove timestamps outside the window
	windowStart := now.Add(-windowDuration)
	validTimestamps := entry.timestamps[:0] // Reuse slice capacity
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			validTimestamps = append(validTimestamps, ts)
		}
	}
	entry.timestamps = validTimestamps

	if len(entry.timestamps) >= l.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}
