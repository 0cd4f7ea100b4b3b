package canbus

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// wireFrame is the CBOR representation of a Frame. Integer keys keep the
// capture compact; only the significant payload bytes are stored.
type wireFrame struct {
	ID       uint32 `cbor:"1,keyasint"`
	Flags    uint8  `cbor:"2,keyasint,omitempty"`
	DLC      uint8  `cbor:"3,keyasint"`
	Data     []byte `cbor:"4,keyasint,omitempty"`
	Sec      int64  `cbor:"5,keyasint,omitempty"`
	Nsec     int32  `cbor:"6,keyasint,omitempty"`
	Channel  int    `cbor:"7,keyasint,omitempty"`
	Transmit bool   `cbor:"8,keyasint,omitempty"`
}

const (
	wireExtended = 1 << iota
	wireRTR
	wireStatus
	wireFD
	wireBRS
	wireESI
)

func toWire(f Frame) wireFrame {
	w := wireFrame{ID: f.ID, DLC: f.DLC, Sec: f.Timestamp.Sec, Nsec: f.Timestamp.Nsec}
	if f.Extended {
		w.Flags |= wireExtended
	}
	if f.RTR {
		w.Flags |= wireRTR
	}
	if f.Status {
		w.Flags |= wireStatus
	}
	if f.FD {
		w.Flags |= wireFD
	}
	if f.BRS {
		w.Flags |= wireBRS
	}
	if f.ESI {
		w.Flags |= wireESI
	}
	if !f.RTR {
		w.Data = append([]byte(nil), f.Payload()...)
	}
	return w
}

func fromWire(w wireFrame) (Frame, error) {
	f := Frame{
		ID:        w.ID,
		Extended:  w.Flags&wireExtended != 0,
		RTR:       w.Flags&wireRTR != 0,
		Status:    w.Flags&wireStatus != 0,
		FD:        w.Flags&wireFD != 0,
		BRS:       w.Flags&wireBRS != 0,
		ESI:       w.Flags&wireESI != 0,
		DLC:       w.DLC,
		Timestamp: Timestamp{Sec: w.Sec, Nsec: w.Nsec},
	}
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	if len(w.Data) > f.Len() {
		return Frame{}, ErrInvalidLen
	}
	copy(f.Data[:], w.Data)
	return f, nil
}

// MarshalCBOR encodes the frame, including its timestamp, as a CBOR map.
func (f Frame) MarshalCBOR() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return cbor.Marshal(toWire(f))
}

// UnmarshalCBOR decodes a frame produced by MarshalCBOR.
func (f *Frame) UnmarshalCBOR(data []byte) error {
	var w wireFrame
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("canbus: decode cbor frame: %w", err)
	}
	g, err := fromWire(w)
	if err != nil {
		return err
	}
	*f = g
	return nil
}

// Record is one captured frame together with where it was seen.
type Record struct {
	Frame    Frame
	Channel  int
	Transmit bool
}

// CaptureWriter appends frames to a CBOR sequence (RFC 8742).
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter returns a writer that streams records to w.
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{enc: cbor.NewEncoder(w)}
}

// Write appends one record.
func (c *CaptureWriter) Write(r Record) error {
	if err := r.Frame.Validate(); err != nil {
		return err
	}
	w := toWire(r.Frame)
	w.Channel = r.Channel
	w.Transmit = r.Transmit
	return c.enc.Encode(w)
}

// CaptureReader reads records written by a CaptureWriter.
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader returns a reader over a CBOR sequence of frames.
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Read returns the next record, or io.EOF at the end of the capture.
func (c *CaptureReader) Read() (Record, error) {
	var w wireFrame
	if err := c.dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("canbus: read capture: %w", err)
	}
	f, err := fromWire(w)
	if err != nil {
		return Record{}, err
	}
	return Record{Frame: f, Channel: w.Channel, Transmit: w.Transmit}, nil
}
