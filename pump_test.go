package binproto

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/binproto/internal/testutils"
	"github.com/pior/binproto/layout"
)

func collect(out *[]Tuple) func(Tuple) error {
	return func(values Tuple) error {
		*out = append(*out, values)
		return nil
	}
}

func TestPump_Text(t *testing.T) {
	testutils.StartLog(t)
	p, rec := newTestText(t, TextConfig{})
	conn := testutils.NewConnectionMock(testutils.SplitEvery([]byte("añ€😀"), 1)...)

	var got []Tuple
	err := NewPump(p, PumpConfig{}).Run(context.Background(), conn, collect(&got))
	require.NoError(t, err)

	assert.Equal(t, "añ€😀", joinTuples(got))
	assert.Empty(t, rec.errs)
}

func TestPump_FlushesAtEOF(t *testing.T) {
	p, rec := newTestText(t, TextConfig{})
	conn := testutils.NewConnectionMock([]byte("end\xe2"))

	var got []Tuple
	err := NewPump(p, PumpConfig{}).Run(context.Background(), conn, collect(&got))
	require.NoError(t, err)

	assert.Equal(t, []Tuple{{"end"}}, got)
	assert.Equal(t, []string{"DecodeError"}, rec.kinds())
}

func TestPump_FixedReadsWholeRecords(t *testing.T) {
	p, _ := newTestFixed(t, layout.Field{Kind: layout.Uint, Length: 2}, layout.Field{Kind: layout.Bool, Length: 1})

	// Records arrive split at arbitrary points.
	conn := testutils.NewConnectionMock([]byte{0, 1}, []byte{1, 0, 2}, []byte{0})

	var got []Tuple
	err := NewPump(p, PumpConfig{}).Run(context.Background(), conn, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, []Tuple{{uint64(1), true}, {uint64(2), false}}, got)
}

func TestPump_BreakerStopsOnMalformedStream(t *testing.T) {
	p, _ := newTestText(t, TextConfig{})
	conn := testutils.NewConnectionMock(
		[]byte("ok"),
		[]byte{0xff}, []byte{0xff}, []byte{0xff},
		[]byte("never read"),
	)

	var got []Tuple
	err := NewPump(p, PumpConfig{MaxConsecutiveMalformed: 3}).Run(context.Background(), conn, collect(&got))
	require.ErrorIs(t, err, ErrTooManyMalformed)
	assert.Equal(t, []Tuple{{"ok"}}, got)
}

func TestPump_BreakerResetsOnCleanChunk(t *testing.T) {
	p, _ := newTestText(t, TextConfig{})
	conn := testutils.NewConnectionMock(
		[]byte{0xff}, []byte{0xff}, []byte("a"),
		[]byte{0xff}, []byte{0xff}, []byte("b"),
	)

	var got []Tuple
	err := NewPump(p, PumpConfig{MaxConsecutiveMalformed: 3}).Run(context.Background(), conn, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, []Tuple{{"a"}, {"b"}}, got)
}

func TestPump_StopsOnCallbackError(t *testing.T) {
	p, _ := newTestText(t, TextConfig{})
	conn := testutils.NewConnectionMock([]byte("a"), []byte("b"))
	stop := errors.New("stop")

	err := NewPump(p, PumpConfig{}).Run(context.Background(), conn, func(Tuple) error { return stop })
	require.ErrorIs(t, err, stop)
}

func TestPump_ReadError(t *testing.T) {
	p, _ := newTestText(t, TextConfig{})
	broken := errors.New("connection reset")
	conn := testutils.NewConnectionMock([]byte("a")).FailReadsWith(broken)

	var got []Tuple
	err := NewPump(p, PumpConfig{}).Run(context.Background(), conn, collect(&got))
	require.ErrorIs(t, err, broken)
	assert.Equal(t, []Tuple{{"a"}}, got)
}

func TestPump_ContextCanceled(t *testing.T) {
	p, _ := newTestText(t, TextConfig{})
	conn := testutils.NewConnectionMock([]byte("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPump(p, PumpConfig{}).Run(ctx, conn, func(Tuple) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestPump_SendAndDrain(t *testing.T) {
	p, _ := newTestText(t, TextConfig{Encoding: "iso-8859-1"})
	conn := testutils.NewConnectionMock()
	pump := NewPump(p, PumpConfig{})

	n, err := pump.Send(conn, Tuple{"café"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	p.ProcessOutbound(Tuple{"!"})
	p.ProcessOutbound(Tuple{"?"})
	n, err = pump.Drain(conn)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, []byte{'c', 'a', 'f', 0xe9, '!', '?'}, conn.Written())
}

func TestPump_DrainWriteError(t *testing.T) {
	p, _ := newTestText(t, TextConfig{})
	broken := errors.New("broken pipe")
	conn := testutils.NewConnectionMock().FailWritesWith(broken)

	_, err := NewPump(p, PumpConfig{}).Send(conn, Tuple{"x"})
	require.ErrorIs(t, err, broken)
}
