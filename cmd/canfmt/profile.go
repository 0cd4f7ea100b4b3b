package main

import (
	"github.com/spf13/cobra"

	"github.com/notnil/canfmt/internal/config"
	"github.com/notnil/canfmt/internal/errors"
)

type profileFlags struct {
	write string
}

func newProfileCmd(out *outputFlags) *cobra.Command {
	flags := &profileFlags{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the effective formatting profile as YAML",
		Long: `Print the formatting options that result from the defaults, --profile and
the formatting flags, in the YAML form accepted by --profile.`,
		Example: `  canfmt profile --time relative --flags --write mine.yaml
  canfmt --profile mine.yaml dump can0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := out.formatConfig(cmd)
			if err != nil {
				return err
			}
			if flags.write != "" {
				return errors.WrapConfigError(config.WriteProfile(flags.write, &cfg), flags.write)
			}
			data, err := config.FromConfig(&cfg).Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.write, "write", "", "Write the profile to this file instead of stdout")

	return cmd
}
