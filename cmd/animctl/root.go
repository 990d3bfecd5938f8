package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "animctl",
		Short:         "Inspect and simulate skeletal animation directives",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.root, "root", ".", "Directory that data paths are relative to")
	flags.StringVarP(&ctx.configPath, "config", "c", "data/pganims.yaml", "Plugin configuration file (.yaml or .toml)")
	flags.StringVar(&ctx.catalogPath, "models", "data/models.yaml", "Model catalogue file or directory")
	flags.StringVarP(&ctx.modelID, "model", "m", "knight", "Model id in the catalogue")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Print engine logs")

	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newSimulateCommand(ctx))

	return rootCmd
}
