package notation

import (
	"fmt"
	"strings"

	"github.com/notnil/canfmt/canbus"
)

// Encode converts a frame into notation accepted by Parse. The status flag
// and the timestamp have no notation and are dropped.
func Encode(frame canbus.Frame) string {
	var builder strings.Builder
	if frame.Extended {
		builder.WriteString(fmt.Sprintf("%08X", frame.ID&0x1FFFFFFF))
	} else {
		builder.WriteString(fmt.Sprintf("%03X", frame.ID&0x7FF))
	}
	builder.WriteByte('#')

	if frame.FD {
		flags := byte(fdFlagFDF)
		if frame.BRS {
			flags |= fdFlagBRS
		}
		if frame.ESI {
			flags |= fdFlagESI
		}
		builder.WriteString(fmt.Sprintf("#%X", flags))
	} else if frame.RTR {
		builder.WriteByte('R')
		if frame.DLC > 0 {
			builder.WriteByte('0' + frame.DLC&0x0F)
		}
		return builder.String()
	}

	for _, v := range frame.Payload() {
		builder.WriteString(fmt.Sprintf("%02X", v))
	}
	return builder.String()
}

// EncodeReplay appends the replay suffix for r to the notation of frame. A
// single transmission without cycle or increment adds nothing.
func EncodeReplay(frame canbus.Frame, r Replay) string {
	s := Encode(frame)
	if r.Count <= 1 && r.CycleMicros == 0 && r.Inc == IncNone {
		return s
	}
	count := r.Count
	if count == 0 {
		count = 1
	}
	s += fmt.Sprintf("x%d", count)
	if r.CycleMicros > 0 {
		if r.CycleMicros%1000 == 0 && r.CycleMicros/1000 <= maxCycleMillis {
			s += fmt.Sprintf("C%d", r.CycleMicros/1000)
		} else {
			s += fmt.Sprintf("U%d", r.CycleMicros)
		}
	}
	return s + r.Inc.String()
}
