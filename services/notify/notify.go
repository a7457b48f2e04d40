package notify

import (
	"sync"
	"time"
)

// Context tracks which notifications this process has already handled. One
// Context is constructed per process and injected wherever finish events or
// toasts are processed; nothing here is global state.
//
// It suppresses duplicate local side effects (one victory toast, one reward
// claim per game) but does not and cannot suppress duplicate writes from
// other processes; those are handled by the store's compare-and-set and the
// win ledger.
type Context struct {
	mu        sync.Mutex
	lastShown map[string]time.Time
	visible   string
	processed map[string]struct{}
}

func NewContext() *Context {
	return &Context{
		lastShown: make(map[string]time.Time),
		processed: make(map[string]struct{}),
	}
}

// MarkOnce records key in the process-local dedupe set. The first caller for
// a key gets true; every later one gets false. Keys are typically a game id,
// or "gameId:username" for per-player side effects.
func (c *Context) MarkOnce(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, done := c.processed[key]; done {
		return false
	}
	c.processed[key] = struct{}{}
	return true
}

// ShouldShow reports whether a notification under key may be shown at now,
// respecting the per-key cooldown, and records the showing when allowed.
func (c *Context) ShouldShow(key string, now time.Time, cooldown time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.lastShown[key]; ok && now.Sub(last) < cooldown {
		return false
	}
	c.lastShown[key] = now
	return true
}

// SetVisible marks key as the notification currently on screen.
func (c *Context) SetVisible(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = key
}

// ClearVisible clears the on-screen marker if key still owns it.
func (c *Context) ClearVisible(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible == key {
		c.visible = ""
	}
}

// Visible returns the key of the notification currently on screen, if any.
func (c *Context) Visible() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}
