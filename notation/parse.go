// Package notation reads and writes the compact one-line frame notation used
// by cansend-style tools:
//
//	<id>#{data}             classic data frame, e.g. 123#DEADBEEF or 5AA#11.22.33
//	<id>#R{len}             classic remote frame, e.g. 123#R or 123#R4
//	<id>##<flags>{data}     CAN FD frame, flags nibble with FDF (4) set,
//	                        BRS (1) and ESI (2) optional, e.g. 123##5.11.22
//
// Standard identifiers are written with 3 hex digits, extended identifiers
// with 8. A classic frame may carry a "_<dlc>" suffix. Any frame may be
// followed by a replay suffix: "x<count>" (or "*", and "X" where no data
// byte precedes it), optionally a cycle
// time "C<ms>" or "U<µs>", optionally "++" or "--" to increment or
// decrement the payload between transmissions, e.g. 123#0100x10C250++.
package notation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/notnil/canfmt/canbus"
)

// ErrSyntax is wrapped by every error returned from Parse.
var ErrSyntax = errors.New("notation: syntax error")

// SyntaxError reports the byte offset of the first grammar violation.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("notation: syntax error at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Increment tells how the payload changes between repeated transmissions.
type Increment int8

const (
	IncNone Increment = 0
	IncUp   Increment = 1
	IncDown Increment = -1
)

func (i Increment) String() string {
	switch i {
	case IncUp:
		return "++"
	case IncDown:
		return "--"
	}
	return ""
}

// Replay holds the repetition parameters that may follow a frame.
type Replay struct {
	Count       uint32 // transmissions, at least 1
	CycleMicros uint32 // gap between transmissions
	Inc         Increment
}

// DefaultReplay is a single transmission.
var DefaultReplay = Replay{Count: 1}

// Period returns the cycle time as a duration.
func (r Replay) Period() time.Duration {
	return time.Duration(r.CycleMicros) * time.Microsecond
}

const (
	stdIDDigits = 3
	extIDDigits = 8

	maxCycleMillis = 60000
	maxCycleMicros = 60000000

	fdFlagBRS = 0x1
	fdFlagESI = 0x2
	fdFlagFDF = 0x4
)

// Parse decodes one line of notation. On failure it returns a zero Frame, a
// zero Replay and an error wrapping ErrSyntax; callers must not use the
// frame. Parse is safe for concurrent use.
func Parse(line string) (canbus.Frame, Replay, error) {
	p := parser{s: line}
	frame, replay, err := p.parse()
	if err != nil {
		return canbus.Frame{}, Replay{}, err
	}
	return frame, replay, nil
}

// parser is a cursor over the immutable input line.
type parser struct {
	s   string
	pos int
}

func (p *parser) fail(format string, args ...any) error {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

// accept consumes c if it is the next byte.
func (p *parser) accept(c byte) bool {
	if b, ok := p.peek(); ok && b == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) atEnd() bool {
	c, ok := p.peek()
	return !ok || isTerminator(c)
}

func isTerminator(c byte) bool {
	return c == '\n' || c == '\r' || c == ' ' || c == '\t'
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (p *parser) hexDigit() (byte, error) {
	c, ok := p.peek()
	if !ok {
		return 0, p.fail("unexpected end, want hex digit")
	}
	v, ok := hexVal(c)
	if !ok {
		return 0, p.fail("unexpected %q, want hex digit", c)
	}
	p.pos++
	return v, nil
}

// decimal consumes at least one decimal digit and returns the value, failing
// when it exceeds limit.
func (p *parser) decimal(what string, limit uint64) (uint64, error) {
	start := p.pos
	var v uint64
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		v = v*10 + uint64(c-'0')
		if v > limit {
			p.pos = start
			return 0, p.fail("%s exceeds %d", what, limit)
		}
		p.pos++
	}
	if p.pos == start {
		return 0, p.fail("missing %s", what)
	}
	return v, nil
}

func (p *parser) parse() (canbus.Frame, Replay, error) {
	var f canbus.Frame
	r := DefaultReplay

	if err := p.parseID(&f); err != nil {
		return f, r, err
	}
	if !p.accept('#') {
		return f, r, p.fail("want '#' after identifier")
	}
	if p.accept('#') {
		if err := p.parseFDFlags(&f); err != nil {
			return f, r, err
		}
	}
	if c, ok := p.peek(); ok && c == 'R' {
		if err := p.parseRemote(&f); err != nil {
			return f, r, err
		}
	} else if err := p.parseData(&f); err != nil {
		return f, r, err
	}
	if p.accept('_') {
		if err := p.parseDLCSuffix(&f); err != nil {
			return f, r, err
		}
	}
	if err := p.parseRepeat(&r); err != nil {
		return f, r, err
	}
	if !p.atEnd() {
		c, _ := p.peek()
		return f, r, p.fail("unexpected %q", c)
	}
	return f, r, nil
}

func (p *parser) parseID(f *canbus.Frame) error {
	var id uint32
	n := 0
	for {
		c, ok := p.peek()
		if !ok {
			break
		}
		v, ok := hexVal(c)
		if !ok {
			break
		}
		if n == extIDDigits {
			return p.fail("identifier longer than %d digits", extIDDigits)
		}
		id = id<<4 | uint32(v)
		n++
		p.pos++
	}
	switch n {
	case stdIDDigits:
		if id > 0x7FF {
			return &SyntaxError{Pos: 0, Msg: fmt.Sprintf("standard identifier %03X exceeds 7FF", id)}
		}
	case extIDDigits:
		if id > 0x1FFFFFFF {
			return &SyntaxError{Pos: 0, Msg: fmt.Sprintf("extended identifier %08X exceeds 1FFFFFFF", id)}
		}
		f.Extended = true
	default:
		return p.fail("identifier must have %d or %d hex digits, got %d", stdIDDigits, extIDDigits, n)
	}
	f.ID = id
	return nil
}

func (p *parser) parseFDFlags(f *canbus.Frame) error {
	v, err := p.hexDigit()
	if err != nil {
		return err
	}
	if v&fdFlagFDF == 0 || v&^(fdFlagFDF|fdFlagBRS|fdFlagESI) != 0 {
		p.pos--
		return p.fail("invalid FD flags %X", v)
	}
	f.FD = true
	f.BRS = v&fdFlagBRS != 0
	f.ESI = v&fdFlagESI != 0
	if p.accept('.') {
		c, ok := p.peek()
		if !ok {
			return p.fail("'.' must be followed by data")
		}
		if _, isHex := hexVal(c); !isHex {
			return p.fail("'.' must be followed by data")
		}
	}
	return nil
}

func (p *parser) parseRemote(f *canbus.Frame) error {
	if f.FD {
		return p.fail("CAN FD frames have no remote form")
	}
	p.pos++
	f.RTR = true
	if c, ok := p.peek(); ok && c >= '0' && c <= '9' {
		d := c - '0'
		if d > canbus.MaxClassicLen {
			return p.fail("remote length %d exceeds %d", d, canbus.MaxClassicLen)
		}
		f.DLC = d
		p.pos++
	}
	return nil
}

func (p *parser) parseData(f *canbus.Frame) error {
	limit := canbus.MaxClassicLen
	if f.FD {
		limit = canbus.MaxFDLen
	}
	n := 0
	for {
		c, ok := p.peek()
		if !ok {
			break
		}
		if _, isHex := hexVal(c); !isHex {
			// Upper-case X reads as a digit of the data; the repeat marker
			// after data bytes is x or *.
			if c == 'X' && n > 0 {
				return p.fail("unexpected %q in data", c)
			}
			break
		}
		if n == limit {
			return p.fail("more than %d data bytes", limit)
		}
		hi, err := p.hexDigit()
		if err != nil {
			return err
		}
		lo, err := p.hexDigit()
		if err != nil {
			return err
		}
		f.Data[n] = hi<<4 | lo
		n++
		if p.accept('.') {
			c, ok := p.peek()
			if !ok {
				return p.fail("'.' must be followed by a data byte")
			}
			if _, isHex := hexVal(c); !isHex {
				return p.fail("'.' must be followed by a data byte")
			}
		}
	}
	f.DLC = canbus.LenToDLC(n)
	return nil
}

// parseDLCSuffix handles "_<dlc>" on classic frames. Only codes 0..8 are
// accepted; they replace the length derived from the data.
func (p *parser) parseDLCSuffix(f *canbus.Frame) error {
	if f.FD {
		p.pos--
		return p.fail("DLC suffix not allowed on CAN FD frames")
	}
	v, err := p.hexDigit()
	if err != nil {
		return err
	}
	if v > canbus.MaxClassicLen {
		p.pos--
		return p.fail("DLC suffix %X out of range", v)
	}
	f.DLC = v
	return nil
}

func (p *parser) parseRepeat(r *Replay) error {
	if !(p.accept('x') || p.accept('X') || p.accept('*')) {
		return nil
	}
	start := p.pos
	count, err := p.decimal("repeat count", math.MaxUint32)
	if err != nil {
		return err
	}
	if count == 0 {
		p.pos = start
		return p.fail("repeat count must be at least 1")
	}
	r.Count = uint32(count)

	switch {
	case p.accept('C') || p.accept('c'):
		ms, err := p.decimal("cycle time", maxCycleMillis)
		if err != nil {
			return err
		}
		r.CycleMicros = uint32(ms * 1000)
	case p.accept('U') || p.accept('u'):
		us, err := p.decimal("cycle time", maxCycleMicros)
		if err != nil {
			return err
		}
		r.CycleMicros = uint32(us)
	}

	switch {
	case p.accept('+'):
		if !p.accept('+') {
			return p.fail("want \"++\"")
		}
		r.Inc = IncUp
	case p.accept('-'):
		if !p.accept('-') {
			return p.fail("want \"--\"")
		}
		r.Inc = IncDown
	}
	return nil
}
