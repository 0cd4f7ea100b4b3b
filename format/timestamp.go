package format

import (
	"time"

	"github.com/notnil/canfmt/canbus"
)

const nsPerSec = int64(time.Second)

// timeRenderer turns frame timestamps into the time column. It remembers the
// first (zero mode) or previous (relative mode) timestamp seen.
type timeRenderer struct {
	last        canbus.Timestamp
	initialised bool
	loc         *time.Location
}

// normalize folds out-of-range nanoseconds into the seconds field.
func normalize(ts canbus.Timestamp) (int64, int64) {
	sec, nsec := ts.Sec, int64(ts.Nsec)
	sec += nsec / nsPerSec
	nsec %= nsPerSec
	if nsec < 0 {
		sec--
		nsec += nsPerSec
	}
	return sec, nsec
}

// since returns ts - ref, floored at zero. A negative delta means frames
// arrived out of order; it is clamped rather than rendered.
func since(ts, ref canbus.Timestamp) (int64, int64) {
	s1, n1 := normalize(ts)
	s0, n0 := normalize(ref)
	sec, nsec := s1-s0, n1-n0
	if nsec < 0 {
		sec--
		nsec += nsPerSec
	}
	if sec < 0 {
		return 0, 0
	}
	return sec, nsec
}

// advance applies the timestamp mode and returns the seconds and
// nanoseconds to render.
func (r *timeRenderer) advance(ts canbus.Timestamp, mode TimestampMode) (int64, int64) {
	if !r.initialised {
		r.last = ts
		r.initialised = true
	}
	switch mode {
	case TimestampAbsolute:
		return normalize(ts)
	case TimestampRelative:
		sec, nsec := since(ts, r.last)
		r.last = ts
		return sec, nsec
	default:
		return since(ts, r.last)
	}
}

func (r *timeRenderer) render(b *lineBuilder, ts canbus.Timestamp, cfg *Config) {
	sec, nsec := r.advance(ts, cfg.timestampMode)
	switch cfg.layout {
	case LayoutClock:
		var h, m, s int64
		if cfg.timestampMode == TimestampAbsolute {
			loc := r.loc
			if loc == nil {
				loc = time.Local
			}
			t := time.Unix(sec, nsec).In(loc)
			h, m, s = int64(t.Hour()), int64(t.Minute()), int64(t.Second())
		} else {
			// Elapsed hours wrap at 24.
			h, m, s = (sec/3600)%24, (sec/60)%60, sec%60
		}
		if cfg.micro {
			b.printf("%02d:%02d:%02d.%06d", h, m, s, nsec/1000)
		} else {
			b.printf("%02d:%02d:%02d.%04d", h, m, s, nsec/100000)
		}
	case LayoutJulian:
		if !cfg.micro {
			nsec = (nsec + 500000) / 1000000 * 1000000
		}
		days := float64(sec)/86400.0 + float64(nsec)/86.4e12
		if cfg.micro {
			b.printf("%.12f", days)
		} else {
			b.printf("%.9f", days)
		}
	default:
		if cfg.micro {
			b.printf("%3d.%06d", sec, nsec/1000)
		} else {
			b.printf("%3d.%04d", sec, nsec/100000)
		}
	}
}
