package sse

import (
	"bytes"
	"unicode/utf8"
)

// Framer accumulates stream text and splits it into event blocks on the
// "\n\n" delimiter.
//
// Bytes are validated as UTF-8 when they are written. A multi-byte sequence
// cut off at the end of a chunk is held back until the next Write, so the
// produced blocks never depend on how the source was chunked. CRLF line
// endings are folded to LF for the same reason.
//
// A Framer is not safe for concurrent use.
type Framer struct {
	// buf holds validated text that has not yet been returned as a block.
	buf []byte

	// carry holds the bytes of a trailing sequence that cannot be judged
	// until more input arrives: an incomplete rune or a lone '\r'.
	carry []byte

	// scanned is how far into buf a delimiter is known to be absent.
	scanned int

	// written counts every byte handed to Write.
	written int64
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Write folds a chunk of raw bytes into the buffer. It returns an
// *EncodingError if the chunk contains invalid UTF-8. The text before the
// invalid byte is still buffered so its blocks can be drained with Next, but
// the Framer must not be written to again.
func (f *Framer) Write(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	base := f.written - int64(len(f.carry))
	f.written += int64(len(chunk))

	data := chunk
	if len(f.carry) > 0 {
		data = append(f.carry, chunk...)
		f.carry = nil
	}

	cut := incompleteSuffix(data)
	if i := invalidIndex(data[:cut]); i >= 0 {
		f.appendText(data[:i])
		return &EncodingError{Offset: base + int64(i)}
	}

	text := data[:cut]
	if len(text) > 0 && text[len(text)-1] == '\r' {
		cut--
		text = text[:cut]
	}

	if cut < len(data) {
		f.carry = append([]byte(nil), data[cut:]...)
	}

	f.appendText(text)
	return nil
}

// Next returns the next complete event block, without its delimiter. It
// reports false when the buffer holds no complete block and more input is
// needed.
func (f *Framer) Next() (string, bool) {
	i := bytes.Index(f.buf[f.scanned:], []byte(Delimiter))
	if i < 0 {
		// A delimiter may straddle the current end of the buffer.
		f.scanned = max(0, len(f.buf)-1)
		return "", false
	}

	end := f.scanned + i
	block := string(f.buf[:end])

	rest := copy(f.buf, f.buf[end+len(Delimiter):])
	f.buf = f.buf[:rest]
	f.scanned = 0

	return block, true
}

// Buffered returns the number of bytes held that are not yet part of a
// returned block.
func (f *Framer) Buffered() int {
	return len(f.buf) + len(f.carry)
}

// Finish is called once the source is exhausted. It reports an
// *EncodingError if the stream ended in the middle of a multi-byte sequence
// and returns the undelimited trailing text, which is discarded.
func (f *Framer) Finish() (string, error) {
	var err error
	if rest := bytes.TrimPrefix(f.carry, []byte("\r")); len(rest) > 0 {
		err = &EncodingError{Offset: f.written - int64(len(rest))}
	}

	tail := string(f.buf)
	f.buf = nil
	f.carry = nil
	f.scanned = 0

	return tail, err
}

// appendText adds validated text to the buffer, folding CRLF into LF.
func (f *Framer) appendText(text []byte) {
	for len(text) > 0 {
		i := bytes.Index(text, []byte("\r\n"))
		if i < 0 {
			f.buf = append(f.buf, text...)
			return
		}
		f.buf = append(f.buf, text[:i]...)
		f.buf = append(f.buf, '\n')
		text = text[i+2:]
	}
}

// incompleteSuffix returns the length of the prefix of p that ends on a rune
// boundary, leaving out a trailing rune that is not yet complete.
func incompleteSuffix(p []byte) int {
	for i := len(p) - 1; i >= 0 && i > len(p)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(p[i]) {
			continue
		}
		if utf8.FullRune(p[i:]) {
			return len(p)
		}
		return i
	}
	return len(p)
}

// invalidIndex returns the index of the first invalid UTF-8 byte in p, or -1.
func invalidIndex(p []byte) int {
	if utf8.Valid(p) {
		return -1
	}
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
