package testutils

import (
	"bytes"
	"errors"
	"io"
)

// ConnectionMock is a fake transport. Reads return the scripted chunks one
// per call, in order, then io.EOF. Writes are recorded.
type ConnectionMock struct {
	chunks   [][]byte
	readErr  error
	writeBuf bytes.Buffer
	writeErr error
	closed   bool
}

// NewConnectionMock creates a mock that delivers each chunk in a separate
// Read call.
func NewConnectionMock(chunks ...[]byte) *ConnectionMock {
	return &ConnectionMock{chunks: chunks}
}

// SplitEvery returns data cut into chunks of at most n bytes.
func SplitEvery(data []byte, n int) [][]byte {
	var chunks [][]byte
	for len(data) > n {
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	if len(data) > 0 {
		chunks = append(chunks, data)
	}
	return chunks
}

// FailReadsWith makes Read return err once the scripted chunks are used up,
// instead of io.EOF.
func (m *ConnectionMock) FailReadsWith(err error) *ConnectionMock {
	m.readErr = err
	return m
}

// FailWritesWith makes every Write return err.
func (m *ConnectionMock) FailWritesWith(err error) *ConnectionMock {
	m.writeErr = err
	return m
}

func (m *ConnectionMock) Read(b []byte) (int, error) {
	if m.closed {
		return 0, errClosed
	}
	if len(m.chunks) == 0 {
		if m.readErr != nil {
			return 0, m.readErr
		}
		return 0, io.EOF
	}
	n := copy(b, m.chunks[0])
	if n < len(m.chunks[0]) {
		m.chunks[0] = m.chunks[0][n:]
	} else {
		m.chunks = m.chunks[1:]
	}
	return n, nil
}

func (m *ConnectionMock) Write(b []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.closed = true
	return nil
}

// Written returns everything written to the mock.
func (m *ConnectionMock) Written() []byte {
	return m.writeBuf.Bytes()
}

var errClosed = errors.New("testutils: connection closed")
