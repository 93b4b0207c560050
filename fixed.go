package binproto

import (
	"fmt"

	"github.com/pior/binproto/layout"
)

// FixedConfig configures a Fixed protocol.
type FixedConfig struct {
	// Fields is the ordered record layout.
	Fields []layout.Field

	// QueueCapacity bounds each result queue. Default: 100.
	QueueCapacity int

	// Reporter receives recovered errors. Default: DefaultReporter().
	Reporter Reporter
}

// Fixed is a protocol for fixed-width big-endian records. Each outbound
// tuple holds one value per field and becomes one record; each inbound
// chunk must be exactly one record.
type Fixed struct {
	queues
	layout *layout.Layout
}

var _ Protocol = (*Fixed)(nil)

// NewFixed compiles the field list, reusing a cached layout when the same
// list was compiled before.
func NewFixed(cfg FixedConfig) (*Fixed, error) {
	l, err := layout.Cached(cfg.Fields)
	if err != nil {
		return nil, fmt.Errorf("binproto: %w", err)
	}
	return &Fixed{
		queues: newQueues(cfg.QueueCapacity, cfg.Reporter),
		layout: l,
	}, nil
}

// Layout returns the compiled record layout.
func (f *Fixed) Layout() *layout.Layout { return f.layout }

// Size returns the record length in bytes.
func (f *Fixed) Size() int { return f.layout.Size() }

// Pack encodes values as one record.
func (f *Fixed) Pack(values Tuple) ([]byte, error) {
	if len(values) != f.layout.Len() {
		return nil, &ArityError{Want: f.layout.Len(), Got: len(values)}
	}
	return f.layout.Pack(values)
}

// Unpack decodes one record. Integers come back as int64 or uint64.
func (f *Fixed) Unpack(data []byte) (Tuple, error) {
	values, err := f.layout.Unpack(data)
	if err != nil {
		return nil, err
	}
	return Tuple(values), nil
}

func (f *Fixed) ProcessOutbound(values Tuple) {
	f.stats.recordOutbound()

	b, err := f.Pack(values)
	if err != nil {
		f.report(err)
		return
	}
	f.submitSerialised(b)
}

// ProcessInbound unpacks data as one whole record. Empty chunks are
// ignored; any other length mismatch is reported as a LayoutError.
func (f *Fixed) ProcessInbound(data []byte) {
	if len(data) == 0 {
		return
	}
	f.stats.recordInbound(len(data))

	values, err := f.Unpack(data)
	if err != nil {
		f.report(err)
		return
	}
	f.submitDeserialised(values)
}

func (f *Fixed) Reset() {
	f.clear()
}
