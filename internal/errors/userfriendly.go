package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/notnil/canfmt/notation"
)

// UserFriendlyError provides user-friendly error messages with context and hints
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error {
	return e.Err
}

// WrapInterfaceError wraps SocketCAN open/send/receive errors for iface
func WrapInterfaceError(err error, iface string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to use CAN interface %s", iface),
		Reason:  extractInterfaceReason(err),
		Hint:    "The interface must exist and be up; configuring it needs root or CAP_NET_ADMIN",
		Try:     fmt.Sprintf("ip -details link show %s", iface),
		Err:     err,
	}
}

// WrapNotationError wraps frame notation syntax errors, pointing at the
// offending position of input
func WrapNotationError(err error, input string) error {
	if err == nil {
		return nil
	}

	reason := "Frame notation could not be parsed"
	var se *notation.SyntaxError
	if stderrors.As(err, &se) {
		reason = fmt.Sprintf("%s\n    %s\n    %s^", se.Msg, input, strings.Repeat(" ", se.Pos))
	}
	return UserFriendlyError{
		Message: fmt.Sprintf("Invalid frame %q", input),
		Reason:  reason,
		Hint:    "Use <id>#<data>, <id>#R or <id>##<flags><data>, with a 3 or 8 digit hex identifier",
		Try:     "canfmt format 123#DEADBEEF",
		Err:     err,
	}
}

// WrapConfigError wraps configuration errors with user-friendly context
func WrapConfigError(err error, configPath string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Configuration error in %s", configPath),
		Reason:  err.Error(),
		Hint:    "Profile values are names such as zero, relative, clock, hex or dec",
		Try:     fmt.Sprintf("canfmt format --profile %s 123#00", configPath),
		Err:     err,
	}
}

// WrapCaptureError wraps errors reading or writing a capture file
func WrapCaptureError(err error, path string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Capture file %s could not be processed", path),
		Reason:  extractCaptureReason(err),
		Hint:    "Captures are CBOR sequences written by canfmt dump --record",
		Err:     err,
	}
}

func extractInterfaceReason(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "no such device") {
		return "No such device - the interface does not exist"
	}
	if strings.Contains(errStr, "network is down") {
		return "Network is down - the interface is not up"
	}
	if strings.Contains(errStr, "operation not permitted") || strings.Contains(errStr, "CAP_NET_ADMIN") {
		return "Operation not permitted - missing privileges"
	}
	if strings.Contains(errStr, "CAN FD not supported") {
		return "The interface does not accept CAN FD frames"
	}
	if strings.Contains(errStr, "requires linux") {
		return "SocketCAN is only available on Linux"
	}

	return "CAN interface access failed"
}

func extractCaptureReason(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "no such file") {
		return "File not found"
	}
	if strings.Contains(errStr, "cbor") {
		return "File is not a valid frame capture"
	}
	if strings.Contains(errStr, "invalid") {
		return "Capture contains an invalid frame"
	}

	return "Capture I/O failed"
}
