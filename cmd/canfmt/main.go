package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &outputFlags{}
	rootCmd := &cobra.Command{
		Use:   "canfmt",
		Short: "Format, capture and send CAN / CAN FD frames",
		Long: `canfmt renders CAN and CAN FD frames as aligned text lines, reads and
writes the compact <id>#<data> frame notation, records SocketCAN traffic to
CBOR captures and replays frames with a count, cycle time and increment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.register(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newFormatCmd(flags))
	rootCmd.AddCommand(newDumpCmd(flags))
	rootCmd.AddCommand(newSendCmd(flags))
	rootCmd.AddCommand(newPlayCmd(flags))
	rootCmd.AddCommand(newProfileCmd(flags))

	return rootCmd
}
