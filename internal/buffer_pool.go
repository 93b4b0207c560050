package internal

import (
	"bytes"
	"sync"
)

// ByteBufferPool recycles buffers used to accumulate decoded text.
type ByteBufferPool struct {
	pool sync.Pool
}

func NewByteBufferPool(initialSize int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialSize))
			},
		},
	}
}

func (p *ByteBufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put returns buf to the pool. Anything still referencing buf.Bytes() must
// be copied first.
func (p *ByteBufferPool) Put(buf *bytes.Buffer) {
	buf.Reset()
	p.pool.Put(buf)
}
