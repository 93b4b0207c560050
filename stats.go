package binproto

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/pior/binproto/internal/coarsetime"
)

// Stats contains counters for one protocol instance.
// Snapshots are safe to take from any goroutine.
//
// For Prometheus integration see Collector, which exposes these as:
//   - Counters: InboundChunks, InboundBytes, Deserialised, Serialised,
//     SerialisedBytes, Replacements, Evicted
//   - Counter with kind label: ArityErrors, EncodeErrors, DecodeErrors, LayoutErrors
type Stats struct {
	InboundChunks   uint64 // Non-empty chunks passed to ProcessInbound
	InboundBytes    uint64 // Bytes passed to ProcessInbound
	Deserialised    uint64 // Tuples enqueued on the inbound queue
	OutboundTuples  uint64 // Tuples passed to ProcessOutbound
	Serialised      uint64 // Chunks enqueued on the outbound queue
	SerialisedBytes uint64 // Bytes enqueued on the outbound queue
	Replacements    uint64 // Invalid runs substituted in replace mode
	Evicted         uint64 // Queue entries dropped because a queue was full

	ArityErrors  uint64
	EncodeErrors uint64
	DecodeErrors uint64
	LayoutErrors uint64

	LastErrorAt time.Time // Zero if no error was reported
}

// Errors returns the total number of reported errors.
func (s Stats) Errors() uint64 {
	return s.ArityErrors + s.EncodeErrors + s.DecodeErrors + s.LayoutErrors
}

// statsCollector updates the counters of one protocol.
type statsCollector struct {
	inboundChunks   atomic.Uint64
	inboundBytes    atomic.Uint64
	deserialised    atomic.Uint64
	outboundTuples  atomic.Uint64
	serialised      atomic.Uint64
	serialisedBytes atomic.Uint64
	replacements    atomic.Uint64
	evicted         atomic.Uint64

	arityErrors  atomic.Uint64
	encodeErrors atomic.Uint64
	decodeErrors atomic.Uint64
	layoutErrors atomic.Uint64

	lastErrorAt atomic.Int64 // unix nanoseconds
}

func newStatsCollector() *statsCollector {
	return &statsCollector{}
}

func (c *statsCollector) recordInbound(n int) {
	c.inboundChunks.Add(1)
	c.inboundBytes.Add(uint64(n))
}

func (c *statsCollector) recordOutbound() {
	c.outboundTuples.Add(1)
}

func (c *statsCollector) recordDeserialised() {
	c.deserialised.Add(1)
}

func (c *statsCollector) recordSerialised(n int) {
	c.serialised.Add(1)
	c.serialisedBytes.Add(uint64(n))
}

func (c *statsCollector) recordReplacement() {
	c.replacements.Add(1)
}

func (c *statsCollector) recordEvicted() {
	c.evicted.Add(1)
}

func (c *statsCollector) recordError(err error) {
	var (
		arityErr  *ArityError
		encodeErr *EncodeError
		decodeErr *DecodeError
		layoutErr *LayoutError
	)
	switch {
	case errors.As(err, &arityErr):
		c.arityErrors.Add(1)
	case errors.As(err, &encodeErr):
		c.encodeErrors.Add(1)
	case errors.As(err, &decodeErr):
		c.decodeErrors.Add(1)
	case errors.As(err, &layoutErr):
		c.layoutErrors.Add(1)
	}
	c.lastErrorAt.Store(coarsetime.Now().UnixNano())
}

func (c *statsCollector) snapshot() Stats {
	s := Stats{
		InboundChunks:   c.inboundChunks.Load(),
		InboundBytes:    c.inboundBytes.Load(),
		Deserialised:    c.deserialised.Load(),
		OutboundTuples:  c.outboundTuples.Load(),
		Serialised:      c.serialised.Load(),
		SerialisedBytes: c.serialisedBytes.Load(),
		Replacements:    c.replacements.Load(),
		Evicted:         c.evicted.Load(),
		ArityErrors:     c.arityErrors.Load(),
		EncodeErrors:    c.encodeErrors.Load(),
		DecodeErrors:    c.decodeErrors.Load(),
		LayoutErrors:    c.layoutErrors.Load(),
	}
	if ns := c.lastErrorAt.Load(); ns != 0 {
		s.LastErrorAt = time.Unix(0, ns)
	}
	return s
}
