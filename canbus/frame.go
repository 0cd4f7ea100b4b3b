package canbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Timestamp is the reception or transmission time of a frame.
type Timestamp struct {
	Sec  int64
	Nsec int32
}

// TimestampOf converts a time.Time into a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
}

// Time returns the timestamp as a time.Time in the local zone.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Sec, int64(t.Nsec))
}

// Frame represents a classical CAN (2.0A/2.0B) or CAN FD frame.
//
// Supported features:
//   - Standard (11-bit) and Extended (29-bit) identifiers
//   - Data frames and Remote Transmission Request (RTR)
//   - Error/status frames reported by the controller
//   - CAN FD frames with bit-rate switch (BRS) and error state indicator (ESI)
//
// DLC holds the raw 4-bit length code; only the first Len() bytes of Data
// are significant.
type Frame struct {
	ID        uint32 // 11-bit (std) or 29-bit (ext)
	Extended  bool   // true for 29-bit identifier
	RTR       bool   // remote transmission request
	Status    bool   // error/status frame
	FD        bool   // CAN FD format
	BRS       bool   // bit-rate switch (FD only)
	ESI       bool   // error state indicator (FD only)
	DLC       uint8  // 0..8 classic, 0..15 FD
	Data      [MaxFDLen]byte
	Timestamp Timestamp
}

// Validation limits.
const (
	maxStdID = 0x7FF
	maxExtID = 0x1FFFFFFF
)

var (
	ErrInvalidID    = errors.New("canbus: invalid identifier")
	ErrInvalidLen   = errors.New("canbus: invalid data length")
	ErrInvalidFlags = errors.New("canbus: invalid frame flags")
)

// Validate returns an error if the frame is not valid.
func (f Frame) Validate() error {
	if f.DLC > MaxDLC || (!f.FD && f.DLC > MaxClassicLen) {
		return ErrInvalidLen
	}
	if f.Extended {
		if f.ID > maxExtID {
			return ErrInvalidID
		}
	} else {
		if f.ID > maxStdID {
			return ErrInvalidID
		}
	}
	if !f.FD && (f.BRS || f.ESI) {
		return ErrInvalidFlags
	}
	if f.FD && f.RTR {
		return ErrInvalidFlags
	}
	return nil
}

// Len returns the number of significant data bytes.
func (f Frame) Len() int {
	return DLCToLen(f.DLC)
}

// Payload returns the significant data bytes.
func (f Frame) Payload() []byte {
	return f.Data[:f.Len()]
}

// MustFrame constructs a Frame and panics if invalid. Convenience for examples.
// Payloads longer than 8 bytes produce a CAN FD frame; lengths between FD
// breakpoints are zero padded up to the next DLC.
func MustFrame(id uint32, data []byte) Frame {
	var f Frame
	f.ID = id
	if id > maxStdID {
		f.Extended = true
	}
	if len(data) > MaxFDLen {
		panic(ErrInvalidLen)
	}
	f.FD = len(data) > MaxClassicLen
	f.DLC = LenToDLC(len(data))
	copy(f.Data[:], data)
	if err := f.Validate(); err != nil {
		panic(err)
	}
	return f
}

// String returns a compact single-line form: "123 [2] DE AD".
func (f Frame) String() string {
	var b strings.Builder
	if f.Extended {
		fmt.Fprintf(&b, "%08X", f.ID)
	} else {
		fmt.Fprintf(&b, "%03X", f.ID)
	}
	if f.FD {
		fmt.Fprintf(&b, " [%02d]", f.Len())
	} else {
		fmt.Fprintf(&b, " [%d]", f.Len())
	}
	switch {
	case f.Status:
		b.WriteString(" ERR")
	case f.RTR:
		b.WriteString(" RTR")
	}
	if !f.RTR {
		for _, v := range f.Payload() {
			fmt.Fprintf(&b, " %02X", v)
		}
	}
	return b.String()
}

// SocketCAN frame sizes and id flags.
const (
	ClassicFrameSize = 16 // struct can_frame
	FDFrameSize      = 72 // struct canfd_frame

	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
	canEffMask = 0x1FFFFFFF
	canStdMask = 0x7FF

	canfdBRS = 0x01
	canfdESI = 0x02
	canfdFDF = 0x04
)

// MarshalBinary encodes the frame to the Linux SocketCAN layout: the 16-byte
// "struct can_frame" for classical CAN or the 72-byte "struct canfd_frame"
// for CAN FD. The layout does not include timestamping.
//
// Layout (little-endian):
//
//	0..3  can_id (with flags: EFF/RTR/ERR)
//	4     len (classic: DLC, FD: byte count)
//	5     FD flags (BRS/ESI/FDF), zero for classic
//	6..7  reserved (set to zero)
//	8..   data bytes
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	id := f.ID
	if f.Extended {
		id |= canEffFlag
	}
	if f.RTR {
		id |= canRtrFlag
	}
	if f.Status {
		id |= canErrFlag
	}
	if !f.FD {
		buf := make([]byte, ClassicFrameSize)
		binary.LittleEndian.PutUint32(buf[0:4], id)
		buf[4] = f.DLC
		copy(buf[8:16], f.Data[:MaxClassicLen])
		return buf, nil
	}
	buf := make([]byte, FDFrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = uint8(f.Len())
	flags := byte(canfdFDF)
	if f.BRS {
		flags |= canfdBRS
	}
	if f.ESI {
		flags |= canfdESI
	}
	buf[5] = flags
	copy(buf[8:], f.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes a frame from the Linux SocketCAN can_frame or
// canfd_frame layout, chosen by the buffer length.
func (f *Frame) UnmarshalBinary(data []byte) error {
	var fd bool
	switch {
	case len(data) >= FDFrameSize:
		fd = true
	case len(data) >= ClassicFrameSize:
	default:
		return fmt.Errorf("canbus: need %d or %d bytes, got %d", ClassicFrameSize, FDFrameSize, len(data))
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	*f = Frame{}
	f.Extended = id&canEffFlag != 0
	f.RTR = id&canRtrFlag != 0
	f.Status = id&canErrFlag != 0
	if f.Extended {
		f.ID = id & canEffMask
	} else {
		f.ID = id & canStdMask
	}
	if fd {
		f.FD = true
		f.BRS = data[5]&canfdBRS != 0
		f.ESI = data[5]&canfdESI != 0
		f.DLC = LenToDLC(int(data[4]))
		copy(f.Data[:], data[8:FDFrameSize])
	} else {
		f.DLC = data[4]
		copy(f.Data[:MaxClassicLen], data[8:ClassicFrameSize])
	}
	return f.Validate()
}
