package canbus

import (
	"context"
	"errors"
)

// Bus represents a CAN bus connection which can send and receive frames.
// Implementations should be safe for concurrent use by multiple goroutines.
type Bus interface {
	// Send transmits a frame. It may block until the frame is queued or sent.
	// Context cancellation aborts the operation and returns the context error.
	// Buses without CAN FD support return ErrFDUnsupported for FD frames.
	Send(ctx context.Context, frame Frame) error

	// Receive blocks until the next frame is available or the context is
	// cancelled. Received frames carry their reception Timestamp.
	Receive(ctx context.Context) (Frame, error)

	// Close releases resources. Further Send/Receive return an error.
	Close() error
}

var (
	// ErrClosed indicates the bus or endpoint has been closed.
	ErrClosed = errors.New("canbus: closed")
	// ErrFDUnsupported is returned when sending an FD frame on a classic bus.
	ErrFDUnsupported = errors.New("canbus: CAN FD not supported")
)
