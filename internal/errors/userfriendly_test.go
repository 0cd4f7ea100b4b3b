package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/notnil/canfmt/notation"
)

func TestUserFriendlyError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      UserFriendlyError
		contains []string
	}{
		{
			name:     "message only",
			err:      UserFriendlyError{Message: "something broke"},
			contains: []string{"something broke"},
		},
		{
			name: "all fields",
			err: UserFriendlyError{
				Message: "send failed",
				Reason:  "bus off",
				Hint:    "check termination",
				Try:     "ip link show can0",
				Err:     fmt.Errorf("write: no buffer space available"),
			},
			contains: []string{"send failed", "Reason: bus off", "Hint: check termination", "Try: ip link show can0", "Details: write: no buffer space available"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("Error() = %q, want to contain %q", msg, s)
				}
			}
		})
	}
}

func TestUserFriendlyError_ErrorOmitsEmptyFields(t *testing.T) {
	err := UserFriendlyError{Message: "msg"}
	msg := err.Error()
	if strings.Contains(msg, "Reason:") || strings.Contains(msg, "Hint:") || strings.Contains(msg, "Try:") || strings.Contains(msg, "Details:") {
		t.Errorf("Error() = %q, should not contain empty fields", msg)
	}
}

func TestUserFriendlyError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("root cause")
	err := UserFriendlyError{Message: "wrapper", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Unwrap should return the inner error")
	}

	var nilErr UserFriendlyError
	if nilErr.Unwrap() != nil {
		t.Error("Unwrap on nil Err should return nil")
	}
}

func TestWrapInterfaceError(t *testing.T) {
	if WrapInterfaceError(nil, "can0") != nil {
		t.Fatal("expected nil")
	}

	tests := []struct {
		err    error
		reason string
	}{
		{fmt.Errorf("canbus: bind can9: no such device"), "No such device"},
		{fmt.Errorf("write: network is down"), "not up"},
		{fmt.Errorf("operation requires CAP_NET_ADMIN (or root): operation not permitted"), "privileges"},
		{fmt.Errorf("canbus: CAN FD not supported"), "CAN FD"},
		{fmt.Errorf("something else"), "CAN interface access failed"},
	}
	for _, tt := range tests {
		ufe := WrapInterfaceError(tt.err, "can0").(UserFriendlyError)
		if !strings.Contains(ufe.Message, "can0") {
			t.Errorf("message should name the interface, got %q", ufe.Message)
		}
		if !strings.Contains(ufe.Reason, tt.reason) {
			t.Errorf("reason for %v = %q, want to contain %q", tt.err, ufe.Reason, tt.reason)
		}
	}
}

func TestWrapNotationError(t *testing.T) {
	_, _, perr := notation.Parse("123#11G2")
	err := WrapNotationError(perr, "123#11G2")
	if !errors.Is(err, notation.ErrSyntax) {
		t.Fatalf("wrapped error should match notation.ErrSyntax: %v", err)
	}
	ufe := err.(UserFriendlyError)
	if !strings.Contains(ufe.Reason, "123#11G2\n          ^") {
		t.Errorf("reason should point at the offset, got %q", ufe.Reason)
	}
	if WrapNotationError(nil, "x") != nil {
		t.Error("expected nil")
	}
}

func TestWrapConfigError(t *testing.T) {
	if WrapConfigError(nil, "profile.yaml") != nil {
		t.Fatal("expected nil")
	}
	ufe := WrapConfigError(fmt.Errorf("invalid yaml"), "profile.yaml").(UserFriendlyError)
	if !strings.Contains(ufe.Message, "profile.yaml") {
		t.Errorf("message should contain config path, got %q", ufe.Message)
	}
	if ufe.Reason != "invalid yaml" {
		t.Errorf("reason should be inner error message, got %q", ufe.Reason)
	}
}

func TestWrapCaptureError(t *testing.T) {
	if WrapCaptureError(nil, "bus.cbor") != nil {
		t.Fatal("expected nil")
	}
	ufe := WrapCaptureError(fmt.Errorf("canbus: read capture: cbor: unexpected EOF"), "bus.cbor").(UserFriendlyError)
	if ufe.Reason != "File is not a valid frame capture" {
		t.Errorf("unexpected reason: %q", ufe.Reason)
	}
}
