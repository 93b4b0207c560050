// Package coarsetime provides a clock that is refreshed every 50ms by a
// background goroutine. Reading it costs an atomic load, which keeps error
// timestamps off the hot decode path.
package coarsetime

import (
	"sync"
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var (
	now   atomic.Int64 // unix nanoseconds
	start sync.Once
)

func run() {
	now.Store(time.Now().UnixNano())

	ticker := time.NewTicker(tick)
	go func() {
		for t := range ticker.C {
			now.Store(t.UnixNano())
		}
	}()
}

// Now returns the current time, at most one tick old. The clock starts on
// first use.
func Now() time.Time {
	start.Do(run)
	return time.Unix(0, now.Load())
}
