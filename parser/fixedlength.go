package parser

import "fmt"

// FixedLength frames a byte stream into records of exactly Size bytes.
type FixedLength struct {
	size int
	buf  []byte
}

// NewFixedLength creates a fixed-length parser. Size must be at least one
// byte.
func NewFixedLength(size int) (*FixedLength, error) {
	if size <= 0 {
		return nil, fmt.Errorf("parser: frame length must be positive, got %d", size)
	}
	return &FixedLength{size: size}, nil
}

// Push buffers chunk and returns every full frame it completes. The buffer
// holds fewer than Size bytes after extraction, so a fixed-length parser
// cannot overflow.
func (f *FixedLength) Push(chunk []byte) [][]byte {
	f.buf = append(f.buf, chunk...)
	var frames [][]byte
	for len(f.buf) >= f.size {
		frames = append(frames, append([]byte(nil), f.buf[:f.size]...))
		f.buf = f.buf[f.size:]
	}
	return frames
}

// Finish returns the remaining bytes as a final, possibly undersized frame.
func (f *FixedLength) Finish() ([]byte, bool) {
	if len(f.buf) == 0 {
		return nil, false
	}
	tail := f.buf
	f.buf = nil
	return tail, true
}
