package binproto

import (
	"github.com/pior/binproto/queue"
)

// Tuple is an ordered group of values produced by one deserialisation step
// or consumed by one serialisation step.
type Tuple []any

// Protocol converts value tuples to byte chunks and back.
//
// Both Process methods may produce zero, one or several results per call.
// Results are collected from two independent FIFO queues; no ordering holds
// between the two. When a queue is full its oldest entry is dropped.
type Protocol interface {
	// ProcessOutbound serialises values and enqueues the resulting chunk.
	ProcessOutbound(values Tuple)

	// ProcessInbound decodes as much of data as possible and enqueues
	// every complete tuple.
	ProcessInbound(data []byte)

	// NextSerialised pops the oldest serialised chunk.
	NextSerialised() ([]byte, bool)

	// NextDeserialised pops the oldest decoded tuple.
	NextDeserialised() (Tuple, bool)

	// Reset drops queued results and any buffered input.
	Reset()

	// Stats returns a snapshot of the protocol counters.
	Stats() Stats
}

// queues holds the state shared by every protocol: the two result queues,
// the reporter and the counters.
type queues struct {
	out      *queue.Ring[[]byte]
	in       *queue.Ring[Tuple]
	reporter Reporter
	stats    *statsCollector
}

func newQueues(capacity int, reporter Reporter) queues {
	if reporter == nil {
		reporter = DefaultReporter()
	}
	return queues{
		out:      queue.New[[]byte](capacity),
		in:       queue.New[Tuple](capacity),
		reporter: reporter,
		stats:    newStatsCollector(),
	}
}

func (q *queues) NextSerialised() ([]byte, bool) {
	return q.out.Pop()
}

func (q *queues) NextDeserialised() (Tuple, bool) {
	return q.in.Pop()
}

func (q *queues) Stats() Stats {
	return q.stats.snapshot()
}

func (q *queues) submitSerialised(b []byte) {
	q.stats.recordSerialised(len(b))
	if q.out.Push(b) {
		q.stats.recordEvicted()
	}
}

func (q *queues) submitDeserialised(t Tuple) {
	q.stats.recordDeserialised()
	if q.in.Push(t) {
		q.stats.recordEvicted()
	}
}

func (q *queues) report(err error) {
	q.stats.recordError(err)
	q.reporter.Report(err)
}

func (q *queues) clear() {
	q.out.Clear()
	q.in.Clear()
}
