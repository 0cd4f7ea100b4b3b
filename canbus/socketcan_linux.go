//go:build linux

package canbus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// socketCAN implements Bus over a Linux SocketCAN raw socket.
type socketCAN struct {
	fd        int
	fdFrames  bool
	closeOnce sync.Once
	closed    chan struct{}
}

// DialSocketCAN opens a raw CAN socket bound to the given interface name
// (e.g., "can0"). CAN FD frames are enabled when the kernel and interface
// support them; otherwise the socket carries classic frames only.
func DialSocketCAN(iface string) (Bus, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("canbus: socket: %w", err)
	}

	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("canbus: interface %q: %w", iface, err)
	}

	fdFrames := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 1) == nil

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: netIf.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("canbus: bind %q: %w", iface, err)
	}

	// Non-blocking mode for context-aware operations.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &socketCAN{fd: fd, fdFrames: fdFrames, closed: make(chan struct{})}, nil
}

func (s *socketCAN) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = unix.Close(s.fd)
	})
	return err
}

func (s *socketCAN) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Send writes one frame using the can_frame or canfd_frame layout.
func (s *socketCAN) Send(ctx context.Context, frame Frame) error {
	if frame.FD && !s.fdFrames {
		return ErrFDUnsupported
	}
	buf, err := frame.MarshalBinary()
	if err != nil {
		return err
	}
	for {
		if s.isClosed() {
			return ErrClosed
		}
		n, werr := unix.Write(s.fd, buf)
		if werr == nil {
			if n != len(buf) {
				return errors.New("canbus: short write")
			}
			return nil
		}
		if werr == unix.EAGAIN || werr == unix.ENOBUFS {
			if err := s.wait(ctx, unix.POLLOUT); err != nil {
				return err
			}
			continue
		}
		return werr
	}
}

// Receive reads one frame (blocking respecting context) and stamps it with
// the reception time.
func (s *socketCAN) Receive(ctx context.Context) (Frame, error) {
	buf := make([]byte, FDFrameSize)
	for {
		if s.isClosed() {
			return Frame{}, ErrClosed
		}
		n, rerr := unix.Read(s.fd, buf)
		if rerr == nil {
			if n != ClassicFrameSize && n != FDFrameSize {
				return Frame{}, fmt.Errorf("canbus: short read (%d bytes)", n)
			}
			var f Frame
			if err := f.UnmarshalBinary(buf[:n]); err != nil {
				return Frame{}, err
			}
			f.Timestamp = TimestampOf(time.Now())
			return f, nil
		}
		if rerr == unix.EAGAIN {
			if err := s.wait(ctx, unix.POLLIN); err != nil {
				return Frame{}, err
			}
			continue
		}
		if s.isClosed() {
			return Frame{}, ErrClosed
		}
		return Frame{}, rerr
	}
}

// wait polls the socket for the requested events, waking up periodically to
// observe context cancellation and Close.
func (s *socketCAN) wait(ctx context.Context, events int16) error {
	for {
		timeout := 50 * time.Millisecond
		if deadline, ok := ctx.Deadline(); ok {
			d := time.Until(deadline)
			if d <= 0 {
				return ctx.Err()
			}
			if d < timeout {
				timeout = d
			}
		}
		fds := []unix.PollFd{{Fd: int32(s.fd), Events: events}}
		n, err := unix.Poll(fds, int(timeout/time.Millisecond)+1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.isClosed() {
			return ErrClosed
		}
		if n > 0 {
			return nil
		}
	}
}
