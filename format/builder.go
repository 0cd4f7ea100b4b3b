package format

import (
	"bytes"
	"fmt"
)

// MaxLineLength bounds the text produced for one message, including every
// wrapped data line. The longest option combination stays well below it.
const MaxLineLength = 2048

// lineBuilder accumulates output up to a fixed capacity. Writes past the
// limit are cut off and recorded in truncated.
type lineBuilder struct {
	buf       []byte
	limit     int
	lineStart int
	truncated bool
}

func newLineBuilder(limit int) *lineBuilder {
	return &lineBuilder{buf: make([]byte, 0, 128), limit: limit}
}

func (b *lineBuilder) writeString(s string) {
	room := b.limit - len(b.buf)
	if len(s) > room {
		s = s[:room]
		b.truncated = true
	}
	start := len(b.buf)
	b.buf = append(b.buf, s...)
	if i := bytes.LastIndexByte(b.buf[start:], '\n'); i >= 0 {
		b.lineStart = start + i + 1
	}
}

func (b *lineBuilder) writeByte(c byte) {
	if len(b.buf) >= b.limit {
		b.truncated = true
		return
	}
	b.buf = append(b.buf, c)
	if c == '\n' {
		b.lineStart = len(b.buf)
	}
}

func (b *lineBuilder) printf(format string, args ...any) {
	b.writeString(fmt.Sprintf(format, args...))
}

// column is the number of bytes written since the last newline.
func (b *lineBuilder) column() int {
	return len(b.buf) - b.lineStart
}

func (b *lineBuilder) String() string {
	return string(b.buf)
}
