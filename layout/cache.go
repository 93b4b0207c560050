package layout

import (
	"encoding/binary"
	"slices"
	"sync"

	"github.com/zeebo/xxh3"
)

var cache = struct {
	sync.RWMutex
	m map[uint64][]*Layout
}{m: make(map[uint64][]*Layout)}

// Cached returns a shared compiled layout for fields, compiling it on first
// use. Descriptor lists that hash alike are compared in full, so a collision
// never returns the wrong layout.
func Cached(fields []Field) (*Layout, error) {
	key := fingerprint(fields)

	cache.RLock()
	l := lookup(cache.m[key], fields)
	cache.RUnlock()
	if l != nil {
		return l, nil
	}

	compiled, err := Compile(fields)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	defer cache.Unlock()
	if l := lookup(cache.m[key], fields); l != nil {
		return l, nil
	}
	cache.m[key] = append(cache.m[key], compiled)
	return compiled, nil
}

func lookup(candidates []*Layout, fields []Field) *Layout {
	for _, l := range candidates {
		if slices.Equal(l.fields, fields) {
			return l
		}
	}
	return nil
}

func fingerprint(fields []Field) uint64 {
	buf := make([]byte, 0, len(fields)*16)
	for _, f := range fields {
		buf = append(buf, f.Kind...)
		buf = append(buf, 0)
		buf = binary.BigEndian.AppendUint64(buf, uint64(f.Length))
	}
	return xxh3.Hash(buf)
}
