package binproto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextPool(t *testing.T, maxSize int32) *Pool[*Text] {
	t.Helper()
	pool, err := NewPool(func(ctx context.Context) (*Text, error) {
		return NewText(TextConfig{Reporter: DiscardReporter})
	}, maxSize)
	require.NoError(t, err)
	return pool
}

func TestPool_ReleaseResetsInstance(t *testing.T) {
	pool := newTextPool(t, 1)
	defer pool.Close()
	ctx := context.Background()

	lease, err := pool.Acquire(ctx)
	require.NoError(t, err)
	first := lease.Protocol()
	first.ProcessInbound([]byte("left over\xc3"))
	lease.Release()

	lease, err = pool.Acquire(ctx)
	require.NoError(t, err)
	defer lease.Release()

	p := lease.Protocol()
	assert.Same(t, first, p)
	assert.Equal(t, 0, p.Pending())
	_, ok := p.NextDeserialised()
	assert.False(t, ok)
}

func TestPool_With(t *testing.T) {
	pool := newTextPool(t, 2)
	defer pool.Close()

	err := pool.With(context.Background(), func(p *Text) error {
		p.ProcessInbound([]byte("hi"))
		values, ok := p.NextDeserialised()
		require.True(t, ok)
		assert.Equal(t, Tuple{"hi"}, values)
		return nil
	})
	require.NoError(t, err)

	s := pool.Stats()
	assert.Equal(t, uint64(1), s.AcquireCount)
	assert.Equal(t, uint64(1), s.Created)
	assert.Equal(t, int32(1), s.Idle)
	assert.Equal(t, int32(0), s.Acquired)
}

func TestPool_Destroy(t *testing.T) {
	pool := newTextPool(t, 1)
	defer pool.Close()

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	lease.Destroy()

	assert.Eventually(t, func() bool {
		return pool.Stats().Destroyed == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPool_Closed(t *testing.T) {
	pool := newTextPool(t, 1)
	pool.Close()

	_, err := pool.Acquire(context.Background())
	require.ErrorIs(t, err, ErrPoolClosed)
}
