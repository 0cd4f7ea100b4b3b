package notation

import (
	"errors"
	"testing"
	"time"

	"github.com/notnil/canfmt/canbus"
)

func TestParseClassicData(t *testing.T) {
	f, r, err := Parse("123#1122334455667788")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.ID != 0x123 || f.Extended || f.RTR || f.FD {
		t.Fatalf("unexpected header: %+v", f)
	}
	if f.DLC != 8 {
		t.Fatalf("DLC = %d, want 8", f.DLC)
	}
	want := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if string(f.Payload()) != string(want) {
		t.Fatalf("payload = % X", f.Payload())
	}
	if r != DefaultReplay {
		t.Fatalf("replay = %+v, want defaults", r)
	}
}

func TestParseExtendedRemote(t *testing.T) {
	f, _, err := Parse("12345678#R")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.ID != 0x12345678 || !f.Extended || !f.RTR || f.DLC != 0 {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestParseVariants(t *testing.T) {
	cases := []struct {
		in     string
		frame  canbus.Frame
		replay Replay
	}{
		{"7FF#", canbus.Frame{ID: 0x7FF}, DefaultReplay},
		{"5aa#11.22.33", canbus.Frame{ID: 0x5AA, DLC: 3, Data: [64]byte{0x11, 0x22, 0x33}}, DefaultReplay},
		{"123#R4", canbus.Frame{ID: 0x123, RTR: true, DLC: 4}, DefaultReplay},
		{"123#DEAD_3", canbus.Frame{ID: 0x123, DLC: 3, Data: [64]byte{0xDE, 0xAD}}, DefaultReplay},
		{"123##4", canbus.Frame{ID: 0x123, FD: true}, DefaultReplay},
		{"123##5.1122", canbus.Frame{ID: 0x123, FD: true, BRS: true, DLC: 2, Data: [64]byte{0x11, 0x22}}, DefaultReplay},
		{"00000001##7AA", canbus.Frame{ID: 1, Extended: true, FD: true, BRS: true, ESI: true, DLC: 1, Data: [64]byte{0xAA}}, DefaultReplay},
		{"123##4" + "000102030405060708", canbus.Frame{ID: 0x123, FD: true, DLC: 9, Data: [64]byte{0, 1, 2, 3, 4, 5, 6, 7, 8}}, DefaultReplay},
		{"123#01x5", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, Replay{Count: 5}},
		{"123#01*5c250++", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, Replay{Count: 5, CycleMicros: 250000, Inc: IncUp}},
		{"123#0100x10U1500--", canbus.Frame{ID: 0x123, DLC: 2, Data: [64]byte{1}}, Replay{Count: 10, CycleMicros: 1500, Inc: IncDown}},
		{"123#RX3", canbus.Frame{ID: 0x123, RTR: true}, Replay{Count: 3}},
		{"123#X4294967295", canbus.Frame{ID: 0x123}, Replay{Count: 4294967295}},
		{"123#01x1C60000", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, Replay{Count: 1, CycleMicros: 60000000}},
		{"123#01x1U60000000", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, Replay{Count: 1, CycleMicros: 60000000}},
		{"123#01\n", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, DefaultReplay},
		{"123#01\r\n", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, DefaultReplay},
		{"123#01 trailing words", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, DefaultReplay},
		{"123#01\tx", canbus.Frame{ID: 0x123, DLC: 1, Data: [64]byte{1}}, DefaultReplay},
	}
	for _, tc := range cases {
		f, r, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if f != tc.frame {
			t.Fatalf("Parse(%q) frame = %+v, want %+v", tc.in, f, tc.frame)
		}
		if r != tc.replay {
			t.Fatalf("Parse(%q) replay = %+v, want %+v", tc.in, r, tc.replay)
		}
		if err := f.Validate(); err != nil {
			t.Fatalf("Parse(%q) produced invalid frame: %v", tc.in, err)
		}
	}
}

func TestParseFDLengthRoundsUp(t *testing.T) {
	data := ""
	for i := 0; i < 13; i++ {
		data += "AB"
	}
	f, _, err := Parse("123##4" + data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.DLC != 10 || f.Len() != 16 {
		t.Fatalf("DLC = %d len = %d, want 10/16", f.DLC, f.Len())
	}
	if f.Data[12] != 0xAB || f.Data[13] != 0 {
		t.Fatalf("expected zero padding after 13 bytes: % X", f.Payload())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in  string
		pos int
	}{
		{"123#1122X3", 8},
		{"", 0},
		{"12#11", 2},
		{"1234#11", 4},
		{"123456789#11", 8},
		{"800#11", 0},
		{"20000000#11", 0},
		{"123", 3},
		{"123-11", 3},
		{"123#112", 7},
		{"123#11G2", 6},
		{"123#11.", 7},
		{"123#11..22", 7},
		{"123#112233445566778899", 20},
		{"123#R9", 5},
		{"123#R44", 6},
		{"123##3", 5},
		{"123##C", 5},
		{"123##", 5},
		{"123##5.", 7},
		{"123##5.x3", 7},
		{"123##5. ", 7},
		{"123##4R", 6},
		{"123##411_2", 8},
		{"123#11_9", 7},
		{"123#11_F", 7},
		{"123#11_", 7},
		{"123#11x", 7},
		{"123#11x0", 7},
		{"123#11x4294967296", 7},
		{"123#11x1C60001", 9},
		{"123#11x1U60000001", 9},
		{"123#11x1+", 9},
		{"123#11x1-+", 9},
		{"123#11x1C", 9},
		{"123#11y", 6},
	}
	for _, tc := range cases {
		f, r, err := Parse(tc.in)
		if err == nil {
			t.Fatalf("Parse(%q) succeeded: %+v %+v", tc.in, f, r)
		}
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("Parse(%q) error %v does not wrap ErrSyntax", tc.in, err)
		}
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Parse(%q) error %T is not a *SyntaxError", tc.in, err)
		}
		if se.Pos != tc.pos {
			t.Fatalf("Parse(%q) offset = %d, want %d (%v)", tc.in, se.Pos, tc.pos, err)
		}
		if f != (canbus.Frame{}) || r != (Replay{}) {
			t.Fatalf("Parse(%q) returned partial results", tc.in)
		}
	}
}

func TestReplayPeriod(t *testing.T) {
	_, r, err := Parse("123#x2C20")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Period() != 20*time.Millisecond {
		t.Fatalf("Period() = %v", r.Period())
	}
	if DefaultReplay.Period() != 0 {
		t.Fatalf("default period should be zero")
	}
}
