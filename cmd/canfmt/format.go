package main

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/format"
	"github.com/notnil/canfmt/internal/errors"
	"github.com/notnil/canfmt/notation"
	"github.com/notnil/canfmt/replay"
)

type formatFlags struct {
	expand bool
}

func newFormatCmd(out *outputFlags) *cobra.Command {
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "format [notation...]",
		Short: "Format frames given in <id>#<data> notation",
		Long: `Parse frames written in the compact notation and print them as formatted
lines. Frames are read from the arguments, or one per line from stdin when
no argument is given.

With --expand, a replay suffix (x<count>, C<ms>/U<us>, ++/--) prints every
repetition with timestamps spaced by the cycle time, without waiting.`,
		Example: `  canfmt format 123#DEADBEEF 12345678#R
  canfmt format --flags --wrap 8 123##5.00112233445566778899AABB
  canfmt format --expand --time relative 100#00x4C10++`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := out.printer(cmd)
			if err != nil {
				return err
			}
			lines := args
			if len(lines) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						lines = append(lines, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return err
				}
			}
			now := time.Now()
			for _, line := range lines {
				if err := formatNotation(cmd.Context(), p, line, now, flags.expand); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.expand, "expand", false, "Print every repetition described by a replay suffix")

	return cmd
}

// formatNotation prints the frame described by line. When expand is set the
// replay is run against an in-memory bus on a simulated clock starting at
// start.
func formatNotation(ctx context.Context, p *linePrinter, line string, start time.Time, expand bool) error {
	frame, r, err := notation.Parse(line)
	if err != nil {
		return errors.WrapNotationError(err, line)
	}
	if !expand {
		frame.Timestamp = canbus.TimestampOf(start)
		return p.print(frame, format.TX, 0)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	lb := canbus.NewLoopbackBus()
	defer lb.Close()

	period := r.Period()
	next := start
	clock := func() time.Time {
		t := next
		next = next.Add(period)
		return t
	}
	var printErr error
	r.CycleMicros = 0
	err = replay.Run(ctx, lb.Open(), frame, r,
		replay.WithClock(clock),
		replay.OnSend(func(f canbus.Frame) {
			if printErr == nil {
				printErr = p.print(f, format.TX, 0)
			}
		}),
	)
	if err != nil {
		return err
	}
	return printErr
}
