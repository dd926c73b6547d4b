package usecase

import (
	"strings"
	"sync"
	"time"

	"infiniteLeafWeb/internal/modules/admin/domain"
)

// dashboardCache keeps one dashboard state per session so switching sections
// never re-fetches.
type dashboardCache struct {
	mu      sync.RWMutex
	entries map[string]*dashboardEntry
}

type dashboardEntry struct {
	sessionID string
	active    domain.Section
	snapshot  Snapshot
	failures  map[domain.Section]string
	stale     map[domain.Section]bool
	fetchedAt time.Time

	// rejected is set when the upstream refused the session's token.
	rejected bool
}

func newDashboardCache() *dashboardCache {
	return &dashboardCache{entries: make(map[string]*dashboardEntry)}
}

func (c *dashboardCache) set(entry *dashboardEntry) {
	sessionID := strings.TrimSpace(entry.sessionID)
	if sessionID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID] = entry.clone()
}

func (c *dashboardCache) get(sessionID string) (*dashboardEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

func (c *dashboardCache) delete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.TrimSpace(sessionID))
}

// markStale flags section in every cached dashboard except the origin's.
func (c *dashboardCache) markStale(section domain.Section, originSessionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	marked := 0
	for sessionID, entry := range c.entries {
		if sessionID == originSessionID {
			continue
		}
		if entry.stale == nil {
			entry.stale = make(map[domain.Section]bool)
		}
		entry.stale[section] = true
		marked++
	}
	return marked
}

// prune drops dashboards not refreshed since cutoff.
func (c *dashboardCache) prune(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for sessionID, entry := range c.entries {
		if entry.fetchedAt.Before(cutoff) {
			delete(c.entries, sessionID)
			removed++
		}
	}
	return removed
}

func (c *dashboardCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (e *dashboardEntry) clone() *dashboardEntry {
	if e == nil {
		return nil
	}
	cloned := *e
	cloned.snapshot = e.snapshot.clone()
	cloned.failures = make(map[domain.Section]string, len(e.failures))
	for k, v := range e.failures {
		cloned.failures[k] = v
	}
	cloned.stale = make(map[domain.Section]bool, len(e.stale))
	for k, v := range e.stale {
		cloned.stale[k] = v
	}
	return &cloned
}
