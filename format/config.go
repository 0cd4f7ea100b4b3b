package format

// TimestampMode selects how frame timestamps are turned into the time column.
type TimestampMode int

const (
	// TimestampZero renders the time elapsed since the first formatted frame.
	TimestampZero TimestampMode = iota
	// TimestampAbsolute renders the frame timestamp itself.
	TimestampAbsolute
	// TimestampRelative renders the time elapsed since the previous frame.
	TimestampRelative
)

// TimeLayout selects the grammar of the time column.
type TimeLayout int

const (
	LayoutClock   TimeLayout = iota // HH:MM:SS.ffff
	LayoutSeconds                   // sss.ffff
	LayoutJulian                    // fractional days
)

// Base is the numeral base of a numeric column.
type Base int

const (
	Hex Base = iota
	Dec
	Oct
)

// Separator selects the gap between columns.
type Separator int

const (
	Spaces Separator = iota // two spaces
	Tabs                    // one tab
)

// Wraparound is the number of data bytes per output line.
type Wraparound int

const (
	NoWrap Wraparound = 0
	Wrap8  Wraparound = 8
	Wrap16 Wraparound = 16
	Wrap32 Wraparound = 32
	Wrap64 Wraparound = 64
)

// MaxPromptLen is the longest accepted RX/TX prompt.
const MaxPromptLen = 6

// Config holds every rendering option of a Formatter. The zero value is not
// usable; start from DefaultConfig. Fields change only through the Set
// methods, which validate their argument and leave the configuration
// untouched when it is rejected.
type Config struct {
	timestampMode TimestampMode
	micro         bool
	layout        TimeLayout
	idBase        Base
	dlcBase       Base
	dataBase      Base
	wideIDs       bool
	lengthAsDLC   bool
	brackets      byte
	flags         bool
	ascii         bool
	substitute    byte
	channel       bool
	counter       bool
	separator     Separator
	wraparound    Wraparound
	eol           bool
	rxPrompt      string
	txPrompt      string
}

// DefaultConfig returns the default options: zero-based timestamps in
// seconds with 0.1 ms resolution, hexadecimal identifier/length/data,
// counter and ASCII columns on, space separated, no wraparound.
func DefaultConfig() Config {
	return Config{
		timestampMode: TimestampZero,
		layout:        LayoutSeconds,
		idBase:        Hex,
		dlcBase:       Hex,
		dataBase:      Hex,
		ascii:         true,
		substitute:    '.',
		counter:       true,
		separator:     Spaces,
		wraparound:    NoWrap,
	}
}

func validBase(b Base) bool { return b == Hex || b == Dec || b == Oct }

func isPrintable(c byte) bool { return c >= 0x20 && c <= 0x7E }

// SetTimestampMode selects zero, absolute or relative timestamps.
func (c *Config) SetTimestampMode(m TimestampMode) bool {
	switch m {
	case TimestampZero, TimestampAbsolute, TimestampRelative:
		c.timestampMode = m
		return true
	}
	return false
}

// SetMicroseconds switches the time column between 0.1 ms and 1 µs resolution.
func (c *Config) SetMicroseconds(on bool) bool {
	c.micro = on
	return true
}

// SetTimeLayout selects the clock, seconds or Julian day layout.
func (c *Config) SetTimeLayout(l TimeLayout) bool {
	switch l {
	case LayoutClock, LayoutSeconds, LayoutJulian:
		c.layout = l
		return true
	}
	return false
}

// SetIDBase sets the numeral base of the identifier column.
func (c *Config) SetIDBase(b Base) bool {
	if !validBase(b) {
		return false
	}
	c.idBase = b
	return true
}

// SetDLCBase sets the numeral base of the length column.
func (c *Config) SetDLCBase(b Base) bool {
	if !validBase(b) {
		return false
	}
	c.dlcBase = b
	return true
}

// SetDataBase sets the numeral base of the data bytes.
func (c *Config) SetDataBase(b Base) bool {
	if !validBase(b) {
		return false
	}
	c.dataBase = b
	return true
}

// SetWideIDs pads standard identifiers to the extended identifier width so
// mixed traffic stays aligned.
func (c *Config) SetWideIDs(on bool) bool {
	c.wideIDs = on
	return true
}

// SetLengthAsDLC shows the raw DLC code instead of the byte count.
func (c *Config) SetLengthAsDLC(on bool) bool {
	c.lengthAsDLC = on
	return true
}

// SetBrackets wraps the length column in '(' ')' or '[' ']'; 0 disables.
func (c *Config) SetBrackets(open byte) bool {
	switch open {
	case 0, '(', '[':
		c.brackets = open
		return true
	}
	return false
}

// SetFlags toggles the flags column.
func (c *Config) SetFlags(on bool) bool {
	c.flags = on
	return true
}

// SetASCII toggles the ASCII rendering after the data bytes.
func (c *Config) SetASCII(on bool) bool {
	c.ascii = on
	return true
}

// SetSubstitute sets the character shown for non-printable data bytes. It
// must itself be printable.
func (c *Config) SetSubstitute(sub byte) bool {
	if !isPrintable(sub) {
		return false
	}
	c.substitute = sub
	return true
}

// SetChannel toggles the channel column.
func (c *Config) SetChannel(on bool) bool {
	c.channel = on
	return true
}

// SetCounter toggles the message counter column.
func (c *Config) SetCounter(on bool) bool {
	c.counter = on
	return true
}

// SetSeparator selects space or tab separated columns.
func (c *Config) SetSeparator(s Separator) bool {
	switch s {
	case Spaces, Tabs:
		c.separator = s
		return true
	}
	return false
}

// SetWraparound sets the number of data bytes per line.
func (c *Config) SetWraparound(w Wraparound) bool {
	switch w {
	case NoWrap, Wrap8, Wrap16, Wrap32, Wrap64:
		c.wraparound = w
		return true
	}
	return false
}

// SetEndOfLine appends a newline to every formatted message.
func (c *Config) SetEndOfLine(on bool) bool {
	c.eol = on
	return true
}

func validPrompt(p string) bool {
	if len(p) > MaxPromptLen {
		return false
	}
	for i := 0; i < len(p); i++ {
		if !isPrintable(p[i]) {
			return false
		}
	}
	return true
}

// SetRxPrompt sets the prefix of received messages (at most 6 printable
// characters, empty to disable).
func (c *Config) SetRxPrompt(p string) bool {
	if !validPrompt(p) {
		return false
	}
	c.rxPrompt = p
	return true
}

// SetTxPrompt sets the prefix of transmitted messages.
func (c *Config) SetTxPrompt(p string) bool {
	if !validPrompt(p) {
		return false
	}
	c.txPrompt = p
	return true
}

func (c *Config) TimestampMode() TimestampMode { return c.timestampMode }
func (c *Config) Microseconds() bool           { return c.micro }
func (c *Config) TimeLayout() TimeLayout       { return c.layout }
func (c *Config) IDBase() Base                 { return c.idBase }
func (c *Config) DLCBase() Base                { return c.dlcBase }
func (c *Config) DataBase() Base               { return c.dataBase }
func (c *Config) WideIDs() bool                { return c.wideIDs }
func (c *Config) LengthAsDLC() bool            { return c.lengthAsDLC }
func (c *Config) Brackets() byte               { return c.brackets }
func (c *Config) Flags() bool                  { return c.flags }
func (c *Config) ASCII() bool                  { return c.ascii }
func (c *Config) Substitute() byte             { return c.substitute }
func (c *Config) Channel() bool                { return c.channel }
func (c *Config) Counter() bool                { return c.counter }
func (c *Config) Separator() Separator         { return c.separator }
func (c *Config) Wraparound() Wraparound       { return c.wraparound }
func (c *Config) EndOfLine() bool              { return c.eol }
func (c *Config) RxPrompt() string             { return c.rxPrompt }
func (c *Config) TxPrompt() string             { return c.txPrompt }

func (c *Config) sep() string {
	if c.separator == Tabs {
		return "\t"
	}
	return "  "
}

func (c *Config) closingBracket() byte {
	switch c.brackets {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return 0
}

// prompt returns the TX prompt for transmitted frames when set, otherwise
// the RX prompt.
func (c *Config) prompt(dir Direction) string {
	if dir == TX && c.txPrompt != "" {
		return c.txPrompt
	}
	return c.rxPrompt
}
