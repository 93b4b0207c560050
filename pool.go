package binproto

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
)

// PoolStats contains statistics about a protocol pool.
type PoolStats struct {
	AcquireCount    uint64        // Total successful acquires
	WaitCount       uint64        // Acquires that had to wait or create an instance
	CanceledAcquire uint64        // Acquires canceled by their context
	Created         uint64        // Instances created
	Destroyed       uint64        // Instances destroyed
	AcquireWait     time.Duration // Total time spent in waiting acquires

	Total    int32 // Instances in the pool (acquired + idle)
	Idle     int32 // Instances ready for use
	Acquired int32 // Instances currently in use
}

// Pool hands out protocol instances for exclusive use, typically one per
// connection. Released instances are Reset before going back to the pool,
// so a new user never sees another connection's queued results or
// held-back bytes. Counters are not reset.
type Pool[P Protocol] struct {
	pool      *puddle.Pool[P]
	created   atomic.Uint64
	destroyed atomic.Uint64
}

// NewPool creates a pool of at most maxSize instances built by constructor.
func NewPool[P Protocol](constructor func(ctx context.Context) (P, error), maxSize int32) (*Pool[P], error) {
	p := &Pool[P]{}

	pool, err := puddle.NewPool(&puddle.Config[P]{
		Constructor: func(ctx context.Context) (P, error) {
			proto, err := constructor(ctx)
			if err == nil {
				p.created.Add(1)
			}
			return proto, err
		},
		Destructor: func(P) {
			p.destroyed.Add(1)
		},
		MaxSize: maxSize,
	})
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return p, nil
}

// Lease is an acquired protocol instance.
type Lease[P Protocol] struct {
	res *puddle.Resource[P]
}

// Protocol returns the leased instance.
func (l *Lease[P]) Protocol() P {
	return l.res.Value()
}

// Release resets the instance and returns it to the pool.
func (l *Lease[P]) Release() {
	l.res.Value().Reset()
	l.res.Release()
}

// Destroy removes the instance from the pool.
func (l *Lease[P]) Destroy() {
	l.res.Destroy()
}

// Acquire waits for an idle instance or creates one. It returns
// ErrPoolClosed once Close was called.
func (p *Pool[P]) Acquire(ctx context.Context) (*Lease[P], error) {
	res, err := p.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, puddle.ErrClosedPool) {
			return nil, ErrPoolClosed
		}
		return nil, err
	}
	return &Lease[P]{res: res}, nil
}

// With runs fn with an acquired instance and releases it afterwards.
func (p *Pool[P]) With(ctx context.Context, fn func(P) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(lease.Protocol())
}

// Close destroys idle instances and waits for acquired ones to be released.
func (p *Pool[P]) Close() {
	p.pool.Close()
}

func (p *Pool[P]) Stats() PoolStats {
	s := p.pool.Stat()
	return PoolStats{
		AcquireCount:    uint64(s.AcquireCount()),
		WaitCount:       uint64(s.EmptyAcquireCount()),
		CanceledAcquire: uint64(s.CanceledAcquireCount()),
		Created:         p.created.Load(),
		Destroyed:       p.destroyed.Load(),
		AcquireWait:     s.EmptyAcquireWaitTime(),
		Total:           s.TotalResources(),
		Idle:            s.IdleResources(),
		Acquired:        s.AcquiredResources(),
	}
}
