package format

import (
	"fmt"
	"strconv"
	"strings"
)

var timestampModeNames = map[string]TimestampMode{
	"zero":     TimestampZero,
	"absolute": TimestampAbsolute,
	"abs":      TimestampAbsolute,
	"relative": TimestampRelative,
	"rel":      TimestampRelative,
}

var layoutNames = map[string]TimeLayout{
	"clock":   LayoutClock,
	"time":    LayoutClock,
	"seconds": LayoutSeconds,
	"sec":     LayoutSeconds,
	"julian":  LayoutJulian,
	"djd":     LayoutJulian,
}

var baseNames = map[string]Base{
	"hex": Hex,
	"dec": Dec,
	"oct": Oct,
}

func (m TimestampMode) String() string {
	switch m {
	case TimestampZero:
		return "zero"
	case TimestampAbsolute:
		return "absolute"
	case TimestampRelative:
		return "relative"
	}
	return "TimestampMode(" + strconv.Itoa(int(m)) + ")"
}

func (l TimeLayout) String() string {
	switch l {
	case LayoutClock:
		return "clock"
	case LayoutSeconds:
		return "seconds"
	case LayoutJulian:
		return "julian"
	}
	return "TimeLayout(" + strconv.Itoa(int(l)) + ")"
}

func (b Base) String() string {
	switch b {
	case Hex:
		return "hex"
	case Dec:
		return "dec"
	case Oct:
		return "oct"
	}
	return "Base(" + strconv.Itoa(int(b)) + ")"
}

// ParseTimestampMode accepts zero, absolute/abs and relative/rel.
func ParseTimestampMode(s string) (TimestampMode, error) {
	if m, ok := timestampModeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("format: unknown timestamp mode %q", s)
}

// ParseTimeLayout accepts clock/time, seconds/sec and julian/djd.
func ParseTimeLayout(s string) (TimeLayout, error) {
	if l, ok := layoutNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("format: unknown time layout %q", s)
}

// ParseBase accepts hex, dec and oct.
func ParseBase(s string) (Base, error) {
	if b, ok := baseNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("format: unknown base %q", s)
}

// ParseBrackets accepts "", "none", "(", "()", "[" and "[]".
func ParseBrackets(s string) (byte, error) {
	switch strings.TrimSpace(s) {
	case "", "none":
		return 0, nil
	case "(", "()":
		return '(', nil
	case "[", "[]":
		return '[', nil
	}
	return 0, fmt.Errorf("format: unknown brackets %q", s)
}
