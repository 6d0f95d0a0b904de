package gateway

import (
	"strconv"
	"sync"
	"time"
)

// DefaultDebounceWindow guards against double-fired delivery events from
// the same visual element.
const DefaultDebounceWindow = 2 * time.Second

// Debouncer suppresses repeated delivery events per campaign within a
// short window. It is session-scoped: callers hold one instance per
// rendering context, not per process.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

// NewDebouncer creates a Debouncer with the given window. A zero window
// uses DefaultDebounceWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (d *Debouncer) SetClock(now func() time.Time) {
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
}

// Allow reports whether an event of the given kind may fire for the
// campaign, and records the attempt when it may.
func (d *Debouncer) Allow(kind string, campaignID uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := kind + ":" + strconv.FormatUint(campaignID, 10)
	now := d.now()
	if last, ok := d.last[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[key] = now
	return true
}
