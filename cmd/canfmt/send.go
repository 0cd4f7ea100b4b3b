package main

import (
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/format"
	"github.com/notnil/canfmt/internal/errors"
	"github.com/notnil/canfmt/notation"
	"github.com/notnil/canfmt/replay"
)

type sendFlags struct {
	quiet bool
}

func newSendCmd(out *outputFlags) *cobra.Command {
	flags := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send <iface> <notation>",
		Short: "Send a frame, optionally repeated, on a SocketCAN interface",
		Long: `Parse a frame in <id>#<data> notation and transmit it. A replay suffix
repeats the frame: x<count> sets the number of transmissions, C<ms> or U<us>
the cycle time and ++/-- steps the payload after every transmission.
Each transmitted frame is printed as a TX line unless --quiet is given.`,
		Example: `  canfmt send can0 123#DEADBEEF
  canfmt send can0 12345678##5.0102030405060708090A0B0C
  canfmt send vcan0 100#0000x100C10++`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			iface, line := args[0], args[1]
			frame, r, err := notation.Parse(line)
			if err != nil {
				return errors.WrapNotationError(err, line)
			}
			p, err := out.printer(cmd)
			if err != nil {
				return err
			}
			logger, err := out.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			bus, err := openBus(iface)
			if err != nil {
				return errors.WrapInterfaceError(err, iface)
			}
			bus = canbus.NewLoggedBus(bus, logger, slog.LevelDebug, canbus.LogWrite)
			defer bus.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var printErr error
			opts := []replay.Option{
				replay.WithLogger(logger.With("iface", iface)),
				replay.WithClock(time.Now),
			}
			if !flags.quiet {
				opts = append(opts, replay.OnSend(func(f canbus.Frame) {
					if printErr == nil {
						printErr = p.print(f, format.TX, 0)
					}
				}))
			}
			if err := replay.Run(ctx, bus, frame, r, opts...); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.WrapInterfaceError(err, iface)
			}
			return printErr
		},
	}

	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print transmitted frames")

	return cmd
}
