//go:build linux

package canbus

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"
)

// Linux network interface helpers. These toggle the IFF_UP flag via ioctl on
// a SOCK_DGRAM socket.
//
// Bringing interfaces up/down requires CAP_NET_ADMIN. Without sufficient
// privileges they return EPERM.

const ifNameSize = unix.IFNAMSIZ

func checkInterfaceName(name string) error {
	if len(name) == 0 || len(name) >= ifNameSize {
		return fmt.Errorf("canbus: invalid interface name %q", name)
	}
	return nil
}

func interfaceFlags(name string, set func(uint16) (uint16, bool)) (uint16, error) {
	if err := checkInterfaceName(name); err != nil {
		return 0, err
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, err
	}
	defer unix.Close(fd)
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, err
	}
	flags := ifr.Uint16()
	if set == nil {
		return flags, nil
	}
	next, change := set(flags)
	if !change {
		return flags, nil
	}
	ifr.SetUint16(next)
	if err := unix.IoctlIfreq(fd, unix.SIOCSIFFLAGS, ifr); err != nil {
		return flags, err
	}
	return next, nil
}

// IsInterfaceUp returns true if the Linux network interface has IFF_UP set.
func IsInterfaceUp(name string) (bool, error) {
	flags, err := interfaceFlags(name, nil)
	if err != nil {
		return false, err
	}
	return flags&unix.IFF_UP != 0, nil
}

// SetInterfaceUp sets IFF_UP on the given interface. Requires CAP_NET_ADMIN.
func SetInterfaceUp(name string) error {
	_, err := interfaceFlags(name, func(flags uint16) (uint16, bool) {
		return flags | unix.IFF_UP, flags&unix.IFF_UP == 0
	})
	return RequireRootOrCapNetAdmin(err)
}

// SetInterfaceDown clears IFF_UP on the given interface. Requires CAP_NET_ADMIN.
func SetInterfaceDown(name string) error {
	_, err := interfaceFlags(name, func(flags uint16) (uint16, bool) {
		return flags &^ unix.IFF_UP, flags&unix.IFF_UP != 0
	})
	return RequireRootOrCapNetAdmin(err)
}

// RequireRootOrCapNetAdmin maps EPERM to a clearer error advising to grant
// CAP_NET_ADMIN to the binary.
func RequireRootOrCapNetAdmin(err error) error {
	if errors.Is(err, unix.EPERM) {
		return fmt.Errorf("operation requires CAP_NET_ADMIN (or root): %w", err)
	}
	return err
}

// LinuxCANInterfaceOptions controls common CAN interface parameters through
// the system `ip` tool.
//
// Changing bitrates typically requires the interface to be DOWN; call
// SetInterfaceDown first and bring it back up after configuring.
type LinuxCANInterfaceOptions struct {
	// Bitrate sets the arbitration bit-rate in bits per second. Nil leaves it unchanged.
	Bitrate *uint32

	// DataBitrate sets the CAN FD data-phase bit-rate and enables FD mode.
	DataBitrate *uint32

	// RestartMs sets automatic bus-off recovery delay in milliseconds.
	// Set to 0 to disable auto-restart.
	RestartMs *uint32

	// TxQueueLen sets the transmit queue length (number of packets).
	TxQueueLen *int
}

// canLinkArgs returns the `ip link set ... type can` arguments for opts, or
// nil when no CAN-specific option is set.
func canLinkArgs(name string, opts LinuxCANInterfaceOptions) []string {
	if opts.Bitrate == nil && opts.DataBitrate == nil && opts.RestartMs == nil {
		return nil
	}
	args := []string{"link", "set", "dev", name, "type", "can"}
	if opts.Bitrate != nil {
		args = append(args, "bitrate", strconv.FormatUint(uint64(*opts.Bitrate), 10))
	}
	if opts.DataBitrate != nil {
		args = append(args, "dbitrate", strconv.FormatUint(uint64(*opts.DataBitrate), 10), "fd", "on")
	}
	if opts.RestartMs != nil {
		args = append(args, "restart-ms", strconv.FormatUint(uint64(*opts.RestartMs), 10))
	}
	return args
}

// ConfigureLinuxCANInterface applies the non-nil options to a Linux CAN
// network interface by invoking iproute2. Requires CAP_NET_ADMIN (or root).
func ConfigureLinuxCANInterface(name string, opts LinuxCANInterfaceOptions) error {
	if err := checkInterfaceName(name); err != nil {
		return err
	}
	if opts.TxQueueLen != nil {
		cmd := exec.Command("ip", "link", "set", "dev", name, "txqueuelen", strconv.Itoa(*opts.TxQueueLen))
		if out, err := cmd.CombinedOutput(); err != nil {
			return RequireRootOrCapNetAdmin(fmt.Errorf("ip link set txqueuelen failed: %w; output: %s", err, string(out)))
		}
	}
	if args := canLinkArgs(name, opts); args != nil {
		cmd := exec.Command("ip", args...)
		if out, err := cmd.CombinedOutput(); err != nil {
			return RequireRootOrCapNetAdmin(fmt.Errorf("ip link set type can failed: %w; output: %s", err, string(out)))
		}
	}
	return nil
}
