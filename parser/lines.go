package parser

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// LinesConfig configures a Lines parser.
type LinesConfig struct {
	// Delimiter terminates a line. Empty means "\n". The delimiter is
	// matched in the stream's encoding, so it is converted with the
	// stream encoder before scanning.
	Delimiter string

	// IncludeDelimiter emits each line with its trailing delimiter.
	IncludeDelimiter bool

	// Encoding is a WHATWG/IANA label such as "utf-8", "latin1" or
	// "shift_jis". Empty means "utf-8".
	Encoding string

	// MaxBufferSize bounds the raw bytes held while waiting for a
	// delimiter. Zero means 64 KiB.
	MaxBufferSize int
}

// Lines frames a byte stream into decoded text lines. Decoding is stateful
// and incremental: a multi-byte character split across input chunks decodes
// correctly once its remaining bytes arrive.
type Lines struct {
	d   *Delimiter
	dec *encoding.Decoder

	// Undecoded tail of a partial multi-byte sequence, carried into the
	// next decode call.
	carry []byte
}

// NewLines creates a line parser for the given text encoding.
func NewLines(cfg LinesConfig) (*Lines, error) {
	label := cfg.Encoding
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("parser: unknown encoding %q: %w", label, err)
	}

	delim := cfg.Delimiter
	if delim == "" {
		delim = "\n"
	}
	rawDelim, err := enc.NewEncoder().Bytes([]byte(delim))
	if err != nil {
		return nil, fmt.Errorf("parser: delimiter not representable in %q: %w", label, err)
	}

	d, err := NewDelimiter(DelimiterConfig{
		Delimiter:        rawDelim,
		IncludeDelimiter: cfg.IncludeDelimiter,
		MaxBufferSize:    cfg.MaxBufferSize,
	})
	if err != nil {
		return nil, err
	}
	return &Lines{d: d, dec: enc.NewDecoder()}, nil
}

// Push buffers chunk and returns every line completed by it. On buffer
// overflow the lines completed so far are returned with ErrBufferOverflow
// and the parser fails terminally, like Delimiter.
func (l *Lines) Push(chunk []byte) ([]string, error) {
	frames, err := l.d.Push(chunk)
	lines := make([]string, 0, len(frames))
	for _, f := range frames {
		s, derr := l.decode(f, false)
		if derr != nil {
			return lines, derr
		}
		lines = append(lines, s)
	}
	return lines, err
}

// Finish decodes the unterminated tail, if any, and flushes the decoder so
// a pending partial sequence produces its replacement output.
func (l *Lines) Finish() (string, bool) {
	tail, _ := l.d.Finish()
	s, err := l.decode(tail, true)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// decode runs b through the stateful stream decoder. Bytes of an
// incomplete trailing sequence are withheld and retried on the next call;
// atEOF forces them out as replacement characters instead.
func (l *Lines) decode(b []byte, atEOF bool) (string, error) {
	src := b
	if len(l.carry) > 0 {
		src = append(l.carry, b...)
		l.carry = nil
	}
	if len(src) == 0 && !atEOF {
		return "", nil
	}
	var out []byte
	dst := make([]byte, len(src)*3+16)
	for {
		nDst, nSrc, err := l.dec.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]
		switch err {
		case nil:
			return string(out), nil
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			l.carry = append([]byte(nil), src...)
			return string(out), nil
		default:
			return string(out), fmt.Errorf("parser: decode: %w", err)
		}
	}
}
