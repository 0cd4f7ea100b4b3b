package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/format"
	"github.com/notnil/canfmt/internal/errors"
	"github.com/notnil/canfmt/notation"
)

type playFlags struct {
	notation bool
}

func newPlayCmd(out *outputFlags) *cobra.Command {
	flags := &playFlags{}

	cmd := &cobra.Command{
		Use:   "play <capture.cbor>",
		Short: "Print the frames of a recorded capture",
		Long: `Read a CBOR capture written by "canfmt dump --record" and print every
frame with its recorded timestamp, channel and direction. With --notation the
frames are printed in <id>#<data> notation instead, ready for "canfmt send".`,
		Example: `  canfmt play bus.cbor --time relative
  canfmt play bus.cbor --notation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return errors.WrapCaptureError(err, path)
			}
			defer f.Close()

			if flags.notation {
				return errors.WrapCaptureError(playNotation(cmd.OutOrStdout(), f), path)
			}
			p, err := out.printer(cmd)
			if err != nil {
				return err
			}
			return errors.WrapCaptureError(playFormatted(p, f), path)
		},
	}

	cmd.Flags().BoolVar(&flags.notation, "notation", false, "Print frames in <id>#<data> notation")

	return cmd
}

func playFormatted(p *linePrinter, r io.Reader) error {
	capture := canbus.NewCaptureReader(r)
	for {
		rec, err := capture.Read()
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		dir := format.RX
		if rec.Transmit {
			dir = format.TX
		}
		if err := p.print(rec.Frame, dir, rec.Channel); err != nil {
			return err
		}
	}
}

func playNotation(w io.Writer, r io.Reader) error {
	capture := canbus.NewCaptureReader(r)
	for {
		rec, err := capture.Read()
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, notation.Encode(rec.Frame)); err != nil {
			return err
		}
	}
}
