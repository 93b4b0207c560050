package binproto

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes the Stats of a set of named protocols as Prometheus
// metrics, labelled by protocol name.
type Collector struct {
	mu        sync.RWMutex
	protocols map[string]Protocol

	inboundChunks   *prometheus.Desc
	inboundBytes    *prometheus.Desc
	deserialised    *prometheus.Desc
	outboundTuples  *prometheus.Desc
	serialised      *prometheus.Desc
	serialisedBytes *prometheus.Desc
	replacements    *prometheus.Desc
	evicted         *prometheus.Desc
	errors          *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector with metric names prefixed by namespace.
func NewCollector(namespace string) *Collector {
	labels := []string{"protocol"}
	desc := func(name, help string, extra ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", name),
			help,
			append(labels, extra...),
			nil,
		)
	}

	return &Collector{
		protocols:       make(map[string]Protocol),
		inboundChunks:   desc("inbound_chunks_total", "Non-empty chunks passed to ProcessInbound."),
		inboundBytes:    desc("inbound_bytes_total", "Bytes passed to ProcessInbound."),
		deserialised:    desc("deserialised_total", "Tuples enqueued on the inbound queue."),
		outboundTuples:  desc("outbound_tuples_total", "Tuples passed to ProcessOutbound."),
		serialised:      desc("serialised_total", "Chunks enqueued on the outbound queue."),
		serialisedBytes: desc("serialised_bytes_total", "Bytes enqueued on the outbound queue."),
		replacements:    desc("replacements_total", "Invalid byte runs replaced with U+FFFD."),
		evicted:         desc("evicted_total", "Queue entries dropped because a queue was full."),
		errors:          desc("errors_total", "Errors reported, by kind.", "kind"),
	}
}

// Add starts exporting p under name, replacing any protocol already
// registered with that name.
func (c *Collector) Add(name string, p Protocol) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.protocols[name] = p
}

// Remove stops exporting the protocol registered under name.
func (c *Collector) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.protocols, name)
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inboundChunks
	ch <- c.inboundBytes
	ch <- c.deserialised
	ch <- c.outboundTuples
	ch <- c.serialised
	ch <- c.serialisedBytes
	ch <- c.replacements
	ch <- c.evicted
	ch <- c.errors
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, p := range c.protocols {
		s := p.Stats()
		counter := func(d *prometheus.Desc, v uint64, labels ...string) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), append([]string{name}, labels...)...)
		}

		counter(c.inboundChunks, s.InboundChunks)
		counter(c.inboundBytes, s.InboundBytes)
		counter(c.deserialised, s.Deserialised)
		counter(c.outboundTuples, s.OutboundTuples)
		counter(c.serialised, s.Serialised)
		counter(c.serialisedBytes, s.SerialisedBytes)
		counter(c.replacements, s.Replacements)
		counter(c.evicted, s.Evicted)
		counter(c.errors, s.ArityErrors, "ArityError")
		counter(c.errors, s.EncodeErrors, "EncodeError")
		counter(c.errors, s.DecodeErrors, "DecodeError")
		counter(c.errors, s.LayoutErrors, "LayoutError")
	}
}
