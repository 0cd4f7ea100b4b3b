//go:build !linux

package canbus

import "errors"

// ErrUnsupportedPlatform is returned by the SocketCAN helpers off Linux.
var ErrUnsupportedPlatform = errors.New("canbus: SocketCAN requires linux")

// DialSocketCAN is only available on Linux.
func DialSocketCAN(iface string) (Bus, error) {
	return nil, ErrUnsupportedPlatform
}

// SetInterfaceUp is only available on Linux.
func SetInterfaceUp(name string) error {
	return ErrUnsupportedPlatform
}
