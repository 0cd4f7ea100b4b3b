// Package replay transmits a frame repeatedly on a bus, as described by the
// replay suffix of the frame notation: a count, a cycle time and an optional
// payload increment.
package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/notation"
)

// Option customises Run.
type Option func(*options)

type options struct {
	logger *slog.Logger
	onSend func(canbus.Frame)
	now    func() time.Time
}

// WithLogger logs the start and end of a replay. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// OnSend registers fn to be called with every frame after it was sent.
func OnSend(fn func(canbus.Frame)) Option {
	return func(o *options) { o.onSend = fn }
}

// WithClock stamps every frame with now() before it is sent.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Run sends frame r.Count times on bus, waiting r.Period() between
// transmissions. When r.Inc is set the payload is stepped after each send.
// Run returns early with the context error when ctx is cancelled.
func Run(ctx context.Context, bus canbus.Bus, frame canbus.Frame, r notation.Replay, opts ...Option) error {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	if err := frame.Validate(); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	count := r.Count
	if count == 0 {
		count = 1
	}
	period := r.Period()
	o.logger.Info("replay start",
		"frame", notation.Encode(frame),
		"count", count,
		"period", period,
		"inc", int(r.Inc),
	)

	var tick <-chan time.Time
	if period > 0 && count > 1 {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	var sent uint32
	for sent < count {
		if sent > 0 {
			if tick != nil {
				select {
				case <-tick:
				case <-ctx.Done():
					o.logger.Info("replay cancelled", "sent", sent)
					return ctx.Err()
				}
			} else if err := ctx.Err(); err != nil {
				o.logger.Info("replay cancelled", "sent", sent)
				return err
			}
		}
		if o.now != nil {
			frame.Timestamp = canbus.TimestampOf(o.now())
		}
		if err := bus.Send(ctx, frame); err != nil {
			o.logger.Warn("replay send failed", "sent", sent, "err", err)
			return fmt.Errorf("replay: send %d of %d: %w", sent+1, count, err)
		}
		sent++
		if o.onSend != nil {
			o.onSend(frame)
		}
		Step(&frame, r.Inc)
	}
	o.logger.Info("replay done", "sent", sent)
	return nil
}

// Step adds inc to the payload of frame, read as a little-endian unsigned
// integer over its significant bytes. The value wraps at both ends. Remote
// frames and empty payloads are left unchanged.
func Step(frame *canbus.Frame, inc notation.Increment) {
	if frame.RTR {
		return
	}
	data := frame.Data[:frame.Len()]
	switch inc {
	case notation.IncUp:
		for i := range data {
			data[i]++
			if data[i] != 0 {
				return
			}
		}
	case notation.IncDown:
		for i := range data {
			data[i]--
			if data[i] != 0xFF {
				return
			}
		}
	}
}
