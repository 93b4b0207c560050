package binproto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"
)

const DefaultChunkSize = 4096

// PumpConfig configures a Pump.
type PumpConfig struct {
	// ChunkSize is the read buffer size. Defaults to the record size for
	// protocols with fixed-size records, DefaultChunkSize otherwise.
	ChunkSize int

	// MaxConsecutiveMalformed stops the pump with ErrTooManyMalformed once
	// this many chunks in a row produced errors. Zero disables the check.
	MaxConsecutiveMalformed uint32

	// Name identifies the pump's breaker.
	Name string
}

// recordSized is implemented by protocols that decode one fixed-size record
// per chunk.
type recordSized interface {
	Size() int
}

// flusher is implemented by protocols that hold input back between chunks.
type flusher interface {
	Flush()
}

// Pump moves bytes between an io.Reader or io.Writer and a Protocol. It
// does not own the transport: it neither opens nor closes it and does not
// retry failed reads.
type Pump struct {
	proto   Protocol
	chunk   int
	full    bool
	breaker *gobreaker.CircuitBreaker[int]
}

func NewPump(p Protocol, cfg PumpConfig) *Pump {
	pump := &Pump{proto: p, chunk: cfg.ChunkSize}

	if rs, ok := p.(recordSized); ok {
		pump.full = true
		if pump.chunk <= 0 {
			pump.chunk = rs.Size()
		}
	}
	if pump.chunk <= 0 {
		pump.chunk = DefaultChunkSize
	}

	if cfg.MaxConsecutiveMalformed > 0 {
		name := cfg.Name
		if name == "" {
			name = "binproto-pump"
		}
		pump.breaker = NewMalformedBreaker(name, cfg.MaxConsecutiveMalformed, time.Minute)
	}
	return pump
}

// Run reads r until EOF, feeding every chunk to the protocol and passing
// each decoded tuple to fn. At EOF any held-back input is flushed.
//
// Protocols with fixed-size records are read in whole records; others get
// whatever each Read returns. Run stops at the first error from r or fn, on
// context cancellation (checked between chunks) or with ErrTooManyMalformed.
func (p *Pump) Run(ctx context.Context, r io.Reader, fn func(Tuple) error) error {
	buf := make([]byte, p.chunk)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := p.read(r, buf)
		if n > 0 {
			if err := p.feed(buf[:n]); err != nil {
				return err
			}
			if err := p.deliver(fn); err != nil {
				return err
			}
		}

		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF):
			if f, ok := p.proto.(flusher); ok {
				f.Flush()
			}
			return p.deliver(fn)
		default:
			return fmt.Errorf("binproto: read: %w", rerr)
		}
	}
}

func (p *Pump) read(r io.Reader, buf []byte) (int, error) {
	if p.full {
		return io.ReadFull(r, buf)
	}
	return r.Read(buf)
}

func (p *Pump) feed(chunk []byte) error {
	if p.breaker == nil {
		p.proto.ProcessInbound(chunk)
		return nil
	}

	_, err := p.breaker.Execute(func() (int, error) {
		before := p.proto.Stats().Errors()
		p.proto.ProcessInbound(chunk)
		if p.proto.Stats().Errors() > before {
			return 0, errMalformedChunk
		}
		return len(chunk), nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || p.breaker.State() == gobreaker.StateOpen {
		return ErrTooManyMalformed
	}
	return nil
}

func (p *Pump) deliver(fn func(Tuple) error) error {
	for {
		values, ok := p.proto.NextDeserialised()
		if !ok {
			return nil
		}
		if err := fn(values); err != nil {
			return err
		}
	}
}

// Send serialises values and writes every queued chunk to w.
func (p *Pump) Send(w io.Writer, values Tuple) (int64, error) {
	p.proto.ProcessOutbound(values)
	return p.Drain(w)
}

// Drain writes every queued serialised chunk to w and returns the number of
// bytes written.
func (p *Pump) Drain(w io.Writer) (int64, error) {
	var total int64
	for {
		b, ok := p.proto.NextSerialised()
		if !ok {
			return total, nil
		}
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("binproto: write: %w", err)
		}
	}
}
