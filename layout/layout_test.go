package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack_UintBool(t *testing.T) {
	l := MustCompile([]Field{{Uint, 4}, {Bool, 1}})
	require.Equal(t, 5, l.Size())

	out, err := l.Pack([]any{300, true})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x2C, 0x01}, out)

	values, err := l.Unpack(out)
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(300), true}, values)
}

func TestCompile_Fallback(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Bool, 1}, "bool1"},
		{Field{Bool, 2}, "bytes2"},
		{Field{Float, 4}, "float4"},
		{Field{Float, 2}, "bytes2"},
		{Field{Int, 3}, "bytes3"},
		{Field{Uint, 8}, "uint8"},
		{Field{"decimal", 6}, "bytes6"},
	}

	for _, tt := range tests {
		t.Run(tt.field.String(), func(t *testing.T) {
			l, err := Compile([]Field{tt.field})
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.String())
		})
	}
}

func TestCompile_RejectsNonPositiveLength(t *testing.T) {
	_, err := Compile([]Field{{Int, 4}, {Bytes, 0}})
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 1, lerr.Field)
}

func TestRoundTrip(t *testing.T) {
	fields := []Field{
		{Int, 1}, {Int, 2}, {Int, 4}, {Int, 8},
		{Uint, 1}, {Uint, 2}, {Uint, 4}, {Uint, 8},
		{Bool, 1}, {Float, 4}, {Float, 8}, {Bytes, 3},
	}
	values := []any{
		int64(-128), int64(-32768), int64(math.MinInt32), int64(math.MinInt64),
		uint64(255), uint64(65535), uint64(math.MaxUint32), uint64(math.MaxUint64),
		false, float32(1.5), 3.25, []byte("abc"),
	}

	l := MustCompile(fields)
	out, err := l.Pack(values)
	require.NoError(t, err)
	require.Len(t, out, l.Size())

	got, err := l.Unpack(out)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestPack_Errors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value any
	}{
		{name: "int8 overflow", field: Field{Int, 1}, value: 128},
		{name: "int8 underflow", field: Field{Int, 1}, value: -129},
		{name: "uint negative", field: Field{Uint, 4}, value: -1},
		{name: "uint16 overflow", field: Field{Uint, 2}, value: 65536},
		{name: "int from string", field: Field{Int, 4}, value: "1"},
		{name: "bool from int", field: Field{Bool, 1}, value: 1},
		{name: "float32 overflow", field: Field{Float, 4}, value: 1e39},
		{name: "bytes too long", field: Field{Bytes, 2}, value: []byte("abc")},
		{name: "bytes from int", field: Field{Bytes, 2}, value: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := MustCompile([]Field{{Bool, 1}, tt.field})
			out, err := l.Pack([]any{true, tt.value})
			assert.Nil(t, out)

			var lerr *Error
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, 1, lerr.Field)
		})
	}
}

func TestPack_ShortBytesArePadded(t *testing.T) {
	l := MustCompile([]Field{{Bytes, 4}})
	out, err := l.Pack([]any{"ab"})
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 0, 0}, out)
}

func TestPack_FloatInfinityAllowed(t *testing.T) {
	l := MustCompile([]Field{{Float, 4}})
	out, err := l.Pack([]any{math.Inf(1)})
	require.NoError(t, err)

	got, err := l.Unpack(out)
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(got[0].(float32)), 1))
}

func TestPack_WrongCount(t *testing.T) {
	l := MustCompile([]Field{{Uint, 4}, {Bool, 1}})
	_, err := l.Pack([]any{1})

	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, -1, lerr.Field)
}

func TestUnpack_WrongLength(t *testing.T) {
	l := MustCompile([]Field{{Uint, 4}, {Bool, 1}})
	_, err := l.Unpack([]byte{0, 0, 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record is 3 bytes, want 5")
}

func TestUnpack_CopiesBytes(t *testing.T) {
	l := MustCompile([]Field{{Bytes, 2}})
	data := []byte("hi")
	got, err := l.Unpack(data)
	require.NoError(t, err)

	data[0] = 'X'
	assert.Equal(t, []byte("hi"), got[0])
}

func TestCached(t *testing.T) {
	a, err := Cached([]Field{{Uint, 2}, {Bytes, 8}})
	require.NoError(t, err)
	b, err := Cached([]Field{{Uint, 2}, {Bytes, 8}})
	require.NoError(t, err)
	c, err := Cached([]Field{{Uint, 2}, {Bytes, 9}})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)

	_, err = Cached([]Field{{Uint, -1}})
	require.Error(t, err)
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields(" uint:4, BOOL:1 ,bytes:16")
	require.NoError(t, err)
	assert.Equal(t, []Field{{Uint, 4}, {Bool, 1}, {Bytes, 16}}, fields)

	_, err = ParseFields("uint4")
	require.Error(t, err)

	_, err = ParseFields("uint:four")
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.True(t, errors.Unwrap(lerr) != nil)

	_, err = ParseFields("bool:1, Float :x")
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 1, lerr.Field)
	assert.Equal(t, Float, lerr.Kind)
}

func FuzzRoundTrip(f *testing.F) {
	f.Add(int64(300), uint64(7), true, 1.5, []byte("ab"))
	f.Add(int64(-1), uint64(0), false, -0.0, []byte{})

	l := MustCompile([]Field{{Int, 8}, {Uint, 8}, {Bool, 1}, {Float, 8}, {Bytes, 4}})

	f.Fuzz(func(t *testing.T, i int64, u uint64, b bool, x float64, raw []byte) {
		out, err := l.Pack([]any{i, u, b, x, raw})
		if len(raw) > 4 {
			if err == nil {
				t.Fatalf("expected error for %d raw bytes", len(raw))
			}
			return
		}
		if err != nil {
			t.Fatal(err)
		}
		got, err := l.Unpack(out)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != i || got[1] != u || got[2] != b {
			t.Fatalf("scalar mismatch: %v", got)
		}
		if math.Float64bits(got[3].(float64)) != math.Float64bits(x) {
			t.Fatalf("float mismatch: %v != %v", got[3], x)
		}
	})
}

func BenchmarkPack(b *testing.B) {
	l := MustCompile([]Field{{Uint, 4}, {Bool, 1}, {Float, 8}, {Bytes, 16}})
	values := []any{300, true, 2.5, []byte("payload")}

	for b.Loop() {
		_, _ = l.Pack(values)
	}
}

func TestLayout_Kind(t *testing.T) {
	l := MustCompile([]Field{{Int, 4}, {Bool, 3}})
	assert.Equal(t, Int, l.Kind(0))
	assert.Equal(t, Bytes, l.Kind(1))
	assert.Equal(t, []Field{{Int, 4}, {Bool, 3}}, l.Fields())
	assert.Equal(t, 2, l.Len())
}
