package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/decker502/pganims/pkg/config"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the plugin configuration against a model",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			model, mc, err := ctx.loadModel()
			if err != nil {
				return err
			}

			hasBone := func(path string) bool {
				return model.HasBone(strings.Join(strings.Split(path, cfg.PathSeparator), model.Separator))
			}
			err = cfg.ValidateAgainst(len(model.Clips), hasBone)

			var problems []error
			var cfgErr *config.ConfigError
			if errors.As(err, &cfgErr) {
				problems = append(problems, cfgErr.Problems...)
			} else if err != nil {
				return err
			}
			if mc.DefaultAnim > len(model.Clips) {
				problems = append(problems, fmt.Errorf("model %s: default_anim %d exceeds clip count %d: %w",
					mc.ID, mc.DefaultAnim, len(model.Clips), config.ErrInvalidIndex))
			}

			if len(problems) == 0 {
				fmt.Fprintf(out, "%s %s is valid for model %s (%d clips, %d bones)\n",
					colored("OK", text.FgGreen, colorize), ctx.configPath, model.Name, len(model.Clips), len(model.Bones))
				return nil
			}

			for _, p := range problems {
				fmt.Fprintf(out, "%s %v\n", colored("ERROR", text.FgRed, colorize), p)
			}
			return &config.ConfigError{Problems: problems}
		},
	}
}
