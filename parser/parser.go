// Package parser provides streaming frame parsers for the byte stream read
// off a serial port: delimiter framing, text line framing with incremental
// decoding, and fixed-length framing.
//
// Each parser owns one growing buffer and is a single-input single-output
// transform: Push accepts the next chunk and returns the frames it
// completed, Finish flushes whatever remains at end of stream. Parsers may
// be chained, but each instance must be fed from exactly one upstream
// source and is not safe for concurrent use.
package parser

import (
	"bytes"
	"errors"
)

// ErrBufferOverflow is returned once a parser's buffer exceeds its
// configured maximum. The parser is then in a terminal state and produces
// no further frames.
var ErrBufferOverflow = errors.New("parser: buffer exceeded maximum size")

// defaultMaxBufferSize caps parser buffers when the caller does not.
const defaultMaxBufferSize = 65536

// DelimiterConfig configures a Delimiter parser.
type DelimiterConfig struct {
	// Delimiter separates frames; it may span multiple bytes and must not
	// be empty.
	Delimiter []byte

	// IncludeDelimiter emits each frame with its trailing delimiter.
	IncludeDelimiter bool

	// MaxBufferSize bounds the bytes held while waiting for a delimiter.
	// Zero means 64 KiB.
	MaxBufferSize int
}

// Delimiter frames a byte stream on a (possibly multi-byte) delimiter.
type Delimiter struct {
	delim   []byte
	include bool
	max     int
	buf     []byte
	failed  bool
}

// NewDelimiter creates a delimiter parser. An empty delimiter is a
// construction error.
func NewDelimiter(cfg DelimiterConfig) (*Delimiter, error) {
	if len(cfg.Delimiter) == 0 {
		return nil, errors.New("parser: delimiter must not be empty")
	}
	max := cfg.MaxBufferSize
	if max <= 0 {
		max = defaultMaxBufferSize
	}
	return &Delimiter{
		delim:   append([]byte(nil), cfg.Delimiter...),
		include: cfg.IncludeDelimiter,
		max:     max,
	}, nil
}

// Push buffers chunk and returns every frame completed by it. If the bytes
// remaining after extraction exceed the maximum buffer size the parser
// fails terminally: the frames completed so far are returned together with
// ErrBufferOverflow, and every later Push reports the same error.
func (d *Delimiter) Push(chunk []byte) ([][]byte, error) {
	if d.failed {
		return nil, ErrBufferOverflow
	}
	d.buf = append(d.buf, chunk...)
	var frames [][]byte
	for {
		i := bytes.Index(d.buf, d.delim)
		if i < 0 {
			break
		}
		end := i
		if d.include {
			end = i + len(d.delim)
		}
		frames = append(frames, append([]byte(nil), d.buf[:end]...))
		d.buf = d.buf[i+len(d.delim):]
	}
	if len(d.buf) > d.max {
		d.failed = true
		d.buf = nil
		return frames, ErrBufferOverflow
	}
	return frames, nil
}

// Finish returns the unterminated tail left in the buffer at end of
// stream, if any. A failed parser has nothing to flush.
func (d *Delimiter) Finish() ([]byte, bool) {
	if d.failed || len(d.buf) == 0 {
		return nil, false
	}
	tail := d.buf
	d.buf = nil
	return tail, true
}
