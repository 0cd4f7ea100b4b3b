// Package format renders CAN and CAN FD frames as human-readable text lines.
//
// A Formatter owns its Config and the timestamp memory used by the zero and
// relative timestamp modes. It is not safe for concurrent use; give each
// goroutine its own Formatter or serialise calls.
package format

import (
	"strings"
	"time"

	"github.com/notnil/canfmt/canbus"
)

// Direction tells whether a frame was received or transmitted.
type Direction int

const (
	RX Direction = iota
	TX
)

func (d Direction) String() string {
	if d == TX {
		return "TX"
	}
	return "RX"
}

const counterWidth = 7

// Formatter renders frames according to its Config.
type Formatter struct {
	cfg       Config
	clock     timeRenderer
	truncated bool
}

// New returns a Formatter using DefaultConfig.
func New() *Formatter {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig returns a Formatter using cfg. A substitute that is not
// printable, as in the zero Config, is replaced by '.'.
func NewWithConfig(cfg Config) *Formatter {
	if !isPrintable(cfg.substitute) {
		cfg.substitute = '.'
	}
	return &Formatter{cfg: cfg}
}

// Config returns the live configuration; changes apply to the next call.
func (f *Formatter) Config() *Config {
	return &f.cfg
}

// SetLocation sets the zone used for absolute clock timestamps (default
// time.Local).
func (f *Formatter) SetLocation(loc *time.Location) {
	f.clock.loc = loc
}

// Truncated reports whether the last Message call hit MaxLineLength.
func (f *Formatter) Truncated() bool {
	return f.truncated
}

// Message renders a complete line for frame: prompt, counter, time,
// channel, identifier, flags, length and data block, separated according to
// the configuration. A nil frame yields "".
func (f *Formatter) Message(frame *canbus.Frame, dir Direction, counter uint64, channel int) string {
	f.truncated = false
	if frame == nil {
		return ""
	}
	cfg := &f.cfg
	sep := cfg.sep()
	b := newLineBuilder(MaxLineLength)

	if p := cfg.prompt(dir); p != "" {
		b.writeString(p)
		b.writeString(sep)
	}
	if cfg.counter {
		b.printf("%-*d", counterWidth, counter)
		b.writeString(sep)
	}
	f.clock.render(b, frame.Timestamp, cfg)
	b.writeString(sep)
	if cfg.channel {
		b.printf("%d", channel)
		b.writeString(sep)
	}
	f.writeID(b, frame)
	b.writeString(sep)
	if cfg.flags {
		writeFlags(b, frame)
		b.writeString(sep)
	}
	f.writeLength(b, frame)
	if frame.Len() > 0 && !frame.RTR {
		b.writeString(sep)
		f.writeData(b, frame, cfg.ascii)
	}
	if cfg.eol {
		b.writeByte('\n')
	}
	f.truncated = b.truncated
	return b.String()
}

// Time renders the time column alone. It advances the zero/relative
// timestamp memory exactly like Message.
func (f *Formatter) Time(frame *canbus.Frame) string {
	if frame == nil {
		return ""
	}
	b := newLineBuilder(MaxLineLength)
	f.clock.render(b, frame.Timestamp, &f.cfg)
	return b.String()
}

// ID renders the identifier column alone.
func (f *Formatter) ID(frame *canbus.Frame) string {
	if frame == nil {
		return ""
	}
	b := newLineBuilder(MaxLineLength)
	f.writeID(b, frame)
	return b.String()
}

// Flags renders the flags column alone, regardless of the flags option.
func (f *Formatter) Flags(frame *canbus.Frame) string {
	if frame == nil {
		return ""
	}
	b := newLineBuilder(MaxLineLength)
	writeFlags(b, frame)
	return b.String()
}

// DLC renders the length column alone.
func (f *Formatter) DLC(frame *canbus.Frame) string {
	if frame == nil {
		return ""
	}
	b := newLineBuilder(MaxLineLength)
	f.writeLength(b, frame)
	return b.String()
}

// Data renders the data bytes alone, wrapped as configured but without the
// ASCII column. Remote frames carry no data and yield "".
func (f *Formatter) Data(frame *canbus.Frame) string {
	if frame == nil || frame.RTR || frame.Len() == 0 {
		return ""
	}
	b := newLineBuilder(MaxLineLength)
	f.writeData(b, frame, false)
	return b.String()
}

// ASCII renders the significant data bytes as characters, substituting
// non-printable bytes.
func (f *Formatter) ASCII(frame *canbus.Frame) string {
	if frame == nil || frame.RTR {
		return ""
	}
	b := newLineBuilder(MaxLineLength)
	f.writeASCII(b, frame.Payload())
	return b.String()
}

func (f *Formatter) writeID(b *lineBuilder, frame *canbus.Frame) {
	wide := frame.Extended || f.cfg.wideIDs
	switch f.cfg.idBase {
	case Dec:
		if wide {
			b.printf("%-9d", frame.ID)
		} else {
			b.printf("%-4d", frame.ID)
		}
	case Oct:
		if wide {
			b.printf("%010o", frame.ID)
		} else {
			b.printf("%04o", frame.ID)
		}
	default:
		if wide {
			b.printf("%08X", frame.ID)
		} else {
			b.printf("%03X", frame.ID)
		}
	}
}

func writeFlags(b *lineBuilder, frame *canbus.Frame) {
	if frame.Status {
		b.writeString("Error")
		return
	}
	flag := func(on bool, c byte) {
		if on {
			b.writeByte(c)
		} else {
			b.writeByte('-')
		}
	}
	if frame.Extended {
		b.writeByte('X')
	} else {
		b.writeByte('S')
	}
	flag(frame.FD, 'F')
	flag(frame.BRS, 'B')
	flag(frame.ESI, 'E')
	flag(frame.RTR, 'R')
}

func (f *Formatter) writeLength(b *lineBuilder, frame *canbus.Frame) {
	v := frame.Len()
	if f.cfg.lengthAsDLC {
		v = int(frame.DLC)
	}
	open := f.cfg.brackets
	if open != 0 {
		b.writeByte(open)
	}
	narrow := false
	switch f.cfg.dlcBase {
	case Dec:
		b.printf("%d", v)
		narrow = v < 10
	case Oct:
		b.printf("%02o", v)
		narrow = v < 64
	default:
		b.printf("%X", v)
	}
	if open != 0 {
		b.writeByte(f.cfg.closingBracket())
	} else if frame.FD && narrow {
		// FD lengths reach two (dec) or three (oct) digits.
		b.writeByte(' ')
	}
}

// wrapWidth returns the number of bytes per data line for frame.
func (f *Formatter) wrapWidth(frame *canbus.Frame, n int) int {
	if w := int(f.cfg.wraparound); w > 0 {
		return w
	}
	if frame.FD {
		return n
	}
	return canbus.MaxClassicLen
}

func (f *Formatter) byteWidth() int {
	if f.cfg.dataBase == Hex {
		return 2
	}
	return 3
}

func (f *Formatter) writeDataByte(b *lineBuilder, v byte) {
	switch f.cfg.dataBase {
	case Dec:
		b.printf("%-3d", v)
	case Oct:
		b.printf("%03o", v)
	default:
		b.printf("%02X", v)
	}
}

func (f *Formatter) writeData(b *lineBuilder, frame *canbus.Frame, ascii bool) {
	data := frame.Payload()
	n := len(data)
	if n == 0 {
		return
	}
	wrap := f.wrapWidth(frame, n)
	sep := f.cfg.sep()
	indent := "\t"
	if f.cfg.separator == Spaces {
		indent = strings.Repeat(" ", b.column())
	}
	for i, v := range data {
		if i > 0 {
			if i%wrap == 0 {
				if ascii {
					b.writeString(sep)
					f.writeASCII(b, data[i-wrap:i])
				}
				b.writeByte('\n')
				b.writeString(indent)
			} else {
				b.writeByte(' ')
			}
		}
		f.writeDataByte(b, v)
	}
	if !ascii {
		return
	}
	if rem := n % wrap; rem != 0 {
		fill := strings.Repeat(" ", f.byteWidth()+1)
		for k := rem; k < wrap; k++ {
			b.writeString(fill)
		}
	}
	b.writeString(sep)
	f.writeASCII(b, data)
}

func (f *Formatter) writeASCII(b *lineBuilder, data []byte) {
	for _, c := range data {
		if isPrintable(c) {
			b.writeByte(c)
		} else {
			b.writeByte(f.cfg.substitute)
		}
	}
}
