package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/decker502/pganims/pkg/animgraph"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the configuration index table and bone mask groups",
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

			rows := [][]string{{"0", "root", "-", "", "", ""}}
			for i, clip := range model.Clips {
				k := i + 1
				def := ""
				if k == mc.DefaultAnim {
					def = colored("default", text.FgCyan, colorize)
				}
				rows = append(rows, []string{
					strconv.Itoa(k),
					clip.Name,
					fmt.Sprintf("%.3fs", clip.Duration),
					yesNo(slices.Contains(cfg.AnimsWithStartEvent, k)),
					yesNo(slices.Contains(cfg.AnimsWithEndEvent, k)),
					def,
				})
			}
			fmt.Fprintf(out, "Model %s\n", model.Name)
			fmt.Fprintln(out, renderTable(
				[]string{"Index", "Clip", "Duration", "Start", "End", ""},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
				colorize,
			))

			groups := make(map[string][]string)
			for _, m := range cfg.TargetsMasksMapping {
				path := strings.Join(strings.Split(m.Path, cfg.PathSeparator), model.Separator)
				for _, g := range m.Masks {
					groups[path] = append(groups[path], strconv.FormatUint(uint64(g), 10))
				}
			}
			boneRows := make([][]string, 0, len(model.Bones))
			for _, bone := range model.Bones {
				target, _ := model.ResolveTarget(bone)
				boneRows = append(boneRows, []string{bone, strings.Join(groups[bone], ","), shortTarget(target)})
			}
			fmt.Fprintln(out, renderTable([]string{"Bone", "Mask groups", "Target"}, boneRows, nil, colorize))
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func shortTarget(t animgraph.TargetID) string {
	s := t.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
