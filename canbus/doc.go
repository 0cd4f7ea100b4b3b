// Package canbus provides core types and utilities for working with
// Controller Area Network (CAN) and CAN FD in Go.
//
// It includes:
//   - A core Frame type with validation, DLC/length conversion and binary
//     marshaling helpers for the Linux SocketCAN layouts
//   - A CBOR capture format for recording and replaying frames
//   - An in-memory loopback bus, a receive multiplexer and frame filters
//   - A slog-based logging decorator for any Bus
//   - A Linux SocketCAN driver (linux-only)
package canbus
