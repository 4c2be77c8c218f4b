package lexer

import "io"

// lookahead is the maximum number of bytes the Lexer ever needs to peek
// ahead (long-bracket opens and two-byte escapes are the deepest users).
const lookahead = 4

// ByteStream is a small buffered source of bytes offering bounded
// lookahead without requiring the underlying reader to support seeking.
// It is the leaf dependency of the Lexer: the Lexer only ever calls
// Peek and Advance on it.
type ByteStream struct {
	r    io.Reader
	buf  [lookahead]byte
	n    int // number of valid bytes currently buffered in buf
	eof  bool
}

// NewByteStream wraps r for buffered, bounded-lookahead reading.
func NewByteStream(r io.Reader) *ByteStream {
	return &ByteStream{r: r}
}

// fill tops the buffer up until it holds at least `want` bytes, or the
// underlying reader is exhausted.
func (s *ByteStream) fill(want int) {
	for s.n < want && !s.eof {
		var tmp [1]byte
		n, err := s.r.Read(tmp[:])
		if n == 1 {
			s.buf[s.n] = tmp[0]
			s.n++
		}
		if err != nil {
			s.eof = true
		}
	}
}

// Peek returns the byte k positions ahead of the stream's current
// position (k == 0 is the next unread byte) without consuming it. The
// second return is false exactly at end-of-input: a distinguished empty
// peek, per the byte stream's contract.
func (s *ByteStream) Peek(k int) (byte, bool) {
	if k < 0 || k >= lookahead {
		panic("lexer: Peek lookahead out of bounds")
	}
	s.fill(k + 1)
	if k >= s.n {
		return 0, false
	}
	return s.buf[k], true
}

// Advance discards n already-peeked bytes, sliding the buffer window
// forward.
func (s *ByteStream) Advance(n int) {
	s.fill(n)
	if n > s.n {
		n = s.n
	}
	copy(s.buf[:], s.buf[n:s.n])
	s.n -= n
}
