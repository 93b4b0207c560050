package binproto

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// errMalformedChunk marks a chunk whose processing reported at least one
// error. It only feeds the breaker and is never returned to callers.
var errMalformedChunk = errors.New("binproto: malformed chunk")

// NewMalformedBreaker returns a breaker that opens after maxConsecutive
// chunks in a row produced errors. A chunk that decodes cleanly resets the
// count. Once open it stays open for timeout.
func NewMalformedBreaker(name string, maxConsecutive uint32, timeout time.Duration) *gobreaker.CircuitBreaker[int] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxConsecutive
		},
	}
	return gobreaker.NewCircuitBreaker[int](settings)
}
