package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/format"
	"github.com/notnil/canfmt/internal/config"
	"github.com/notnil/canfmt/internal/errors"
)

// outputFlags are the formatting and logging options shared by every command.
type outputFlags struct {
	profile  string
	time     string
	layout   string
	micro    bool
	idBase   string
	dlcBase  string
	dataBase string
	wideIDs  bool
	asDLC    bool
	brackets string
	flags    bool
	ascii    bool
	channel  bool
	counter  bool
	tabs     bool
	wrap     int
	rxPrompt string
	txPrompt string
	color    string
	logLevel string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&o.profile, "profile", "", "YAML formatting profile applied before the flags below")
	fs.StringVar(&o.time, "time", "zero", "Timestamp mode: zero, absolute or relative")
	fs.StringVar(&o.layout, "layout", "seconds", "Time layout: clock, seconds or julian")
	fs.BoolVar(&o.micro, "micro", false, "Microsecond timestamp resolution")
	fs.StringVar(&o.idBase, "id-base", "hex", "Identifier base: hex, dec or oct")
	fs.StringVar(&o.dlcBase, "dlc-base", "hex", "Length base: hex, dec or oct")
	fs.StringVar(&o.dataBase, "data-base", "hex", "Data base: hex, dec or oct")
	fs.BoolVar(&o.wideIDs, "wide-ids", false, "Pad standard identifiers to the extended width")
	fs.BoolVar(&o.asDLC, "dlc", false, "Show the DLC code instead of the byte count")
	fs.StringVar(&o.brackets, "brackets", "none", "Brackets around the length: none, ( or [")
	fs.BoolVar(&o.flags, "flags", false, "Show the flags column")
	fs.BoolVar(&o.ascii, "ascii", true, "Show data bytes as ASCII")
	fs.BoolVar(&o.channel, "channel", false, "Show the channel column")
	fs.BoolVar(&o.counter, "counter", true, "Show the message counter")
	fs.BoolVar(&o.tabs, "tabs", false, "Separate columns with tabs")
	fs.IntVar(&o.wrap, "wrap", 0, "Data bytes per line: 0 (no wrap), 8, 16, 32 or 64")
	fs.StringVar(&o.rxPrompt, "rx-prompt", "", "Prefix of received frames (up to 6 characters)")
	fs.StringVar(&o.txPrompt, "tx-prompt", "", "Prefix of transmitted frames (up to 6 characters)")
	fs.StringVar(&o.color, "color", "auto", "Colour output: auto, always or never")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
}

// commandLineProfile collects the flags the user set explicitly so they can be
// applied on top of a profile file.
func (o *outputFlags) commandLineProfile(cmd *cobra.Command) config.Profile {
	changed := cmd.Flags().Changed
	var p config.Profile
	if changed("time") {
		p.Timestamp = o.time
	}
	if changed("layout") {
		p.Layout = o.layout
	}
	if changed("micro") {
		p.Microseconds = &o.micro
	}
	if changed("id-base") {
		p.IDBase = o.idBase
	}
	if changed("dlc-base") {
		p.DLCBase = o.dlcBase
	}
	if changed("data-base") {
		p.DataBase = o.dataBase
	}
	if changed("wide-ids") {
		p.WideIDs = &o.wideIDs
	}
	if changed("dlc") {
		p.LengthAsDLC = &o.asDLC
	}
	if changed("brackets") {
		p.Brackets = &o.brackets
	}
	if changed("flags") {
		p.Flags = &o.flags
	}
	if changed("ascii") {
		p.ASCII = &o.ascii
	}
	if changed("channel") {
		p.Channel = &o.channel
	}
	if changed("counter") {
		p.Counter = &o.counter
	}
	if changed("tabs") {
		p.Separator = "spaces"
		if o.tabs {
			p.Separator = "tabs"
		}
	}
	if changed("wrap") {
		p.Wraparound = &o.wrap
	}
	if changed("rx-prompt") {
		p.RxPrompt = &o.rxPrompt
	}
	if changed("tx-prompt") {
		p.TxPrompt = &o.txPrompt
	}
	return p
}

// formatConfig builds the effective configuration: defaults, then the
// profile file, then explicit flags.
func (o *outputFlags) formatConfig(cmd *cobra.Command) (format.Config, error) {
	cfg := format.DefaultConfig()
	if o.profile != "" {
		p, err := config.LoadProfile(o.profile)
		if err != nil {
			return cfg, err
		}
		if err := p.Apply(&cfg); err != nil {
			return cfg, errors.WrapConfigError(err, o.profile)
		}
	}
	flagProfile := o.commandLineProfile(cmd)
	if err := flagProfile.Apply(&cfg); err != nil {
		return cfg, errors.UserFriendlyError{
			Message: "Invalid formatting flag",
			Reason:  err.Error(),
			Try:     "canfmt --help",
			Err:     err,
		}
	}
	return cfg, nil
}

func (o *outputFlags) logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// parseLevel converts the textual representation into a slog level.
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// linePrinter writes formatted frames, numbering them and colouring
// transmitted frames green and error frames red.
type linePrinter struct {
	w       io.Writer
	f       *format.Formatter
	counter uint64
	tx      *color.Color
	status  *color.Color
}

func (o *outputFlags) printer(cmd *cobra.Command) (*linePrinter, error) {
	cfg, err := o.formatConfig(cmd)
	if err != nil {
		return nil, err
	}
	p := &linePrinter{
		w:      cmd.OutOrStdout(),
		f:      format.NewWithConfig(cfg),
		tx:     color.New(color.FgGreen),
		status: color.New(color.FgRed, color.Bold),
	}
	switch o.color {
	case "always":
		p.tx.EnableColor()
		p.status.EnableColor()
	case "never":
		p.tx.DisableColor()
		p.status.DisableColor()
	case "auto":
	default:
		return nil, fmt.Errorf("unknown color mode %q", o.color)
	}
	return p, nil
}

func (p *linePrinter) print(frame canbus.Frame, dir format.Direction, channel int) error {
	p.counter++
	line := p.f.Message(&frame, dir, p.counter, channel)
	var err error
	switch {
	case frame.Status:
		_, err = p.status.Fprintln(p.w, line)
	case dir == format.TX:
		_, err = p.tx.Fprintln(p.w, line)
	default:
		_, err = fmt.Fprintln(p.w, line)
	}
	return err
}

// openBus opens a SocketCAN interface; tests replace it.
var openBus = func(iface string) (canbus.Bus, error) {
	return canbus.DialSocketCAN(iface)
}
