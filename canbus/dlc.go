package canbus

// Data length limits.
const (
	MaxClassicLen = 8
	MaxFDLen      = 64
	MaxDLC        = 15
)

// fdLengths maps the CAN FD length codes 9..15 to their byte counts.
var fdLengths = [...]int{12, 16, 20, 24, 32, 48, 64}

// DLCToLen returns the number of data bytes described by a 4-bit DLC.
// Codes 0..8 map to themselves; 9..15 follow the CAN FD table. Codes above
// 15 are not valid DLCs and yield 0.
func DLCToLen(dlc uint8) int {
	switch {
	case dlc <= MaxClassicLen:
		return int(dlc)
	case dlc <= MaxDLC:
		return fdLengths[dlc-9]
	default:
		return 0
	}
}

// LenToDLC returns the smallest DLC whose length holds n bytes. It is a
// ceiling mapping: lengths between CAN FD breakpoints round up.
func LenToDLC(n int) uint8 {
	switch {
	case n > 48:
		return 15
	case n > 32:
		return 14
	case n > 24:
		return 13
	case n > 20:
		return 12
	case n > 16:
		return 11
	case n > 12:
		return 10
	case n > 8:
		return 9
	case n < 0:
		return 0
	default:
		return uint8(n)
	}
}
