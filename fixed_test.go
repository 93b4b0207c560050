package binproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/binproto/layout"
)

func newTestFixed(t testing.TB, fields ...layout.Field) (*Fixed, *errorRecorder) {
	t.Helper()
	rec := &errorRecorder{}
	p, err := NewFixed(FixedConfig{Fields: fields, Reporter: rec})
	require.NoError(t, err)
	return p, rec
}

func TestFixed_PackUnpack(t *testing.T) {
	p, _ := newTestFixed(t, layout.Field{Kind: layout.Uint, Length: 4}, layout.Field{Kind: layout.Bool, Length: 1})

	b, err := p.Pack(Tuple{300, true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x2C, 0x01}, b)

	values, err := p.Unpack(b)
	require.NoError(t, err)
	assert.Equal(t, Tuple{uint64(300), true}, values)
}

func TestFixed_Protocol(t *testing.T) {
	p, rec := newTestFixed(t, layout.Field{Kind: layout.Int, Length: 2}, layout.Field{Kind: layout.Bytes, Length: 3})

	p.ProcessOutbound(Tuple{-2, "ab"})
	out := drainOutbound(p)
	require.Equal(t, [][]byte{{0xff, 0xfe, 'a', 'b', 0}}, out)

	p.ProcessInbound(out[0])
	assert.Equal(t, []Tuple{{int64(-2), []byte{'a', 'b', 0}}}, drainInbound(p))
	assert.Empty(t, rec.errs)
}

func TestFixed_Errors(t *testing.T) {
	p, rec := newTestFixed(t, layout.Field{Kind: layout.Uint, Length: 1})

	p.ProcessOutbound(Tuple{1, 2})
	p.ProcessOutbound(Tuple{256})
	p.ProcessInbound([]byte{1, 2})
	p.ProcessInbound(nil)

	assert.Empty(t, drainOutbound(p))
	assert.Empty(t, drainInbound(p))
	assert.Equal(t, []string{"ArityError", "LayoutError", "LayoutError"}, rec.kinds())

	var lerr *LayoutError
	require.ErrorAs(t, rec.errs[1], &lerr)
	assert.Equal(t, 0, lerr.Field)

	s := p.Stats()
	assert.Equal(t, uint64(1), s.ArityErrors)
	assert.Equal(t, uint64(2), s.LayoutErrors)
}

func TestFixed_SharesCompiledLayout(t *testing.T) {
	fields := []layout.Field{{Kind: layout.Float, Length: 8}, {Kind: layout.Uint, Length: 2}}
	a, _ := newTestFixed(t, fields...)
	b, _ := newTestFixed(t, fields...)

	assert.Same(t, a.Layout(), b.Layout())
	assert.Equal(t, 10, a.Size())
}

func TestNewFixed_InvalidField(t *testing.T) {
	_, err := NewFixed(FixedConfig{Fields: []layout.Field{{Kind: layout.Int, Length: 0}}})

	var lerr *LayoutError
	require.ErrorAs(t, err, &lerr)
}

func TestFixed_RoundTripAllKinds(t *testing.T) {
	p, rec := newTestFixed(t,
		layout.Field{Kind: layout.Int, Length: 8},
		layout.Field{Kind: layout.Uint, Length: 2},
		layout.Field{Kind: layout.Bool, Length: 1},
		layout.Field{Kind: layout.Float, Length: 4},
		layout.Field{Kind: "char", Length: 2},
	)
	values := Tuple{int64(-7), uint64(65000), true, float32(0.25), []byte("hi")}

	p.ProcessOutbound(values)
	out := drainOutbound(p)
	require.Len(t, out, 1)

	p.ProcessInbound(out[0])
	assert.Equal(t, []Tuple{values}, drainInbound(p))
	assert.Empty(t, rec.errs)
}
