package canbus

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestFrameCBOR(t *testing.T) {
	f := MustFrame(0x1ABCDEF0, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	f.Timestamp = Timestamp{Sec: 1700000000, Nsec: 123456789}
	b, err := f.MarshalCBOR()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var g Frame
	if err := g.UnmarshalCBOR(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g != f {
		t.Fatalf("mismatch: got %+v want %+v", g, f)
	}

	// Frame satisfies cbor.Marshaler, so it nests inside other values.
	nested, err := cbor.Marshal([]Frame{f, MustFrame(0x1, nil)})
	if err != nil {
		t.Fatalf("marshal slice: %v", err)
	}
	var frames []Frame
	if err := cbor.Unmarshal(nested, &frames); err != nil {
		t.Fatalf("unmarshal slice: %v", err)
	}
	if len(frames) != 2 || frames[0] != f {
		t.Fatalf("slice mismatch: %+v", frames)
	}
}

func TestFrameCBORRejectsOversizedPayload(t *testing.T) {
	b, err := cbor.Marshal(wireFrame{ID: 0x123, DLC: 1, Data: []byte{1, 2}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var f Frame
	if err := f.UnmarshalCBOR(b); !errors.Is(err, ErrInvalidLen) {
		t.Fatalf("expected ErrInvalidLen, got %v", err)
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewCaptureWriter(&buf)
	in := []Record{
		{Frame: MustFrame(0x123, []byte{1, 2, 3}), Channel: 0},
		{Frame: Frame{ID: 0x7FF, RTR: true, DLC: 4}, Channel: 1, Transmit: true},
		{Frame: Frame{ID: 0x100, FD: true, BRS: true, ESI: true, DLC: 15}, Channel: 2},
	}
	for _, r := range in {
		if err := w.Write(r); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Write(Record{Frame: Frame{ID: 0x800}}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected invalid frame to be rejected, got %v", err)
	}

	r := NewCaptureReader(&buf)
	for i, want := range in {
		got, err := r.Read()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("record %d: got %+v want %+v", i, got, want)
		}
	}
	if _, err := r.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
