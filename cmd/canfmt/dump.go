package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/format"
	"github.com/notnil/canfmt/internal/errors"
)

type dumpFlags struct {
	record   string
	bringUp  bool
	count    int
	ids      []string
	dataOnly bool
	fdOnly   bool
}

func newDumpCmd(out *outputFlags) *cobra.Command {
	flags := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "dump <iface>",
		Short: "Print frames received on a SocketCAN interface",
		Long: `Receive frames from a SocketCAN interface and print them as formatted
lines until interrupted. Frames can optionally be recorded to a CBOR capture
for later use with "canfmt play".`,
		Example: `  canfmt dump can0
  canfmt dump can0 --time relative --flags --record bus.cbor
  canfmt dump vcan0 --id 123 --id 1ABCDEF0 --count 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iface := args[0]
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			p, err := out.printer(cmd)
			if err != nil {
				return err
			}
			logger, err := out.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if flags.bringUp {
				if err := canbus.SetInterfaceUp(iface); err != nil {
					return errors.WrapInterfaceError(err, iface)
				}
			}
			bus, err := openBus(iface)
			if err != nil {
				return errors.WrapInterfaceError(err, iface)
			}
			bus = canbus.NewLoggedBus(bus, logger, slog.LevelDebug, canbus.LogRead)
			defer bus.Close()

			var record func(canbus.Frame) error
			if flags.record != "" {
				f, err := os.Create(flags.record)
				if err != nil {
					return errors.WrapCaptureError(err, flags.record)
				}
				defer f.Close()
				w := canbus.NewCaptureWriter(f)
				record = func(frame canbus.Frame) error {
					return errors.WrapCaptureError(w.Write(canbus.Record{Frame: frame}), flags.record)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			n, err := runDump(ctx, bus, filter, flags.count, p, record)
			logger.Info("dump finished", "iface", iface, "frames", n)
			if stderrors.Is(err, canbus.ErrClosed) {
				return errors.WrapInterfaceError(err, iface)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&flags.record, "record", "", "Also write received frames to this CBOR capture")
	cmd.Flags().BoolVar(&flags.bringUp, "bring-up", false, "Set the interface up first (needs CAP_NET_ADMIN)")
	cmd.Flags().IntVar(&flags.count, "count", 0, "Stop after this many frames (0 = until interrupted)")
	cmd.Flags().StringSliceVar(&flags.ids, "id", nil, "Only show these hex identifiers (repeatable)")
	cmd.Flags().BoolVar(&flags.dataOnly, "data-only", false, "Hide remote and error frames")
	cmd.Flags().BoolVar(&flags.fdOnly, "fd-only", false, "Only show CAN FD frames")

	return cmd
}

func (d *dumpFlags) filter() (canbus.FrameFilter, error) {
	var filter canbus.FrameFilter
	if len(d.ids) > 0 {
		ids := make([]uint32, 0, len(d.ids))
		for _, s := range d.ids {
			v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
			if err != nil || v > 0x1FFFFFFF {
				return nil, fmt.Errorf("invalid --id %q: want a hex identifier", s)
			}
			ids = append(ids, uint32(v))
		}
		filter = canbus.ByIDs(ids...)
	}
	if d.dataOnly {
		filter = and(filter, canbus.DataOnly())
	}
	if d.fdOnly {
		filter = and(filter, canbus.FDOnly())
	}
	return filter, nil
}

func and(a, b canbus.FrameFilter) canbus.FrameFilter {
	if a == nil {
		return b
	}
	return canbus.And(a, b)
}

// runDump prints frames from bus that pass filter until ctx is done, the bus
// closes or limit frames (when positive) were printed. Each frame is passed
// to record first when it is set. It returns the number of frames printed.
func runDump(ctx context.Context, bus canbus.Bus, filter canbus.FrameFilter, limit int, p *linePrinter, record func(canbus.Frame) error) (int, error) {
	if filter == nil {
		filter = func(canbus.Frame) bool { return true }
	}
	mux := canbus.NewMux(bus)
	defer mux.Close()
	frames, cancel := mux.Subscribe(filter, 256)
	defer cancel()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return n, nil
		case frame, ok := <-frames:
			if !ok {
				return n, canbus.ErrClosed
			}
			if record != nil {
				if err := record(frame); err != nil {
					return n, err
				}
			}
			if err := p.print(frame, format.RX, 0); err != nil {
				return n, err
			}
			n++
			if limit > 0 && n >= limit {
				return n, nil
			}
		}
	}
}
