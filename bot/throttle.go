package bot

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedUsers bounds the limiter table. When it fills up the table is
// reset, which at worst hands every user a fresh burst.
const maxTrackedUsers = 10000

// Throttle limits how many events a single user can push through the bot.
// A nil *Throttle allows everything.
type Throttle struct {
	limit    rate.Limit
	burst    int
	limiters map[int64]*rate.Limiter
	mutex    sync.Mutex
}

// NewThrottle creates a per-user limiter.
// rps is the sustained events per second (can be fractional), burst the
// number of events allowed back to back. rps <= 0 disables throttling.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[int64]*rate.Limiter),
	}
}

// Allow reports whether the user may be served right now and consumes a token if so
func (t *Throttle) Allow(userID int64) bool {
	if t == nil {
		return true
	}

	t.mutex.Lock()
	lim, ok := t.limiters[userID]
	if !ok {
		if len(t.limiters) >= maxTrackedUsers {
			t.limiters = make(map[int64]*rate.Limiter)
		}
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters[userID] = lim
	}
	t.mutex.Unlock()

	return lim.Allow()
}
