package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/rawsource"
)

func newDropoutsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dropouts",
		Short: "Inspect dropout hint files",
	}
	cmd.AddCommand(newDropoutsCheckCommand())
	cmd.AddCommand(newDropoutsSummaryCommand())
	return cmd
}

func newDropoutsCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "check <dropouts.txt>",
		Short:       "Validate a dropout hint file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			hints, err := rawsource.ParseDropouts(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			regions := 0
			for _, list := range hints {
				regions += len(list)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d regions across %d fields\n", args[0], regions, len(hints))
			return nil
		},
	}
}

func newDropoutsSummaryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "summary <dropouts.txt>",
		Short:       "Show the most damaged fields in a dropout hint file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			hints, err := rawsource.ParseDropouts(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			type fieldDamage struct {
				id      fieldsource.FieldID
				regions int
				samples int
			}
			damage := make([]fieldDamage, 0, len(hints))
			for id, list := range hints {
				d := fieldDamage{id: id, regions: len(list)}
				for _, r := range list {
					d.samples += r.Length()
				}
				damage = append(damage, d)
			}
			sort.Slice(damage, func(i, j int) bool {
				if damage[i].samples != damage[j].samples {
					return damage[i].samples > damage[j].samples
				}
				return damage[i].id < damage[j].id
			})
			if limit > 0 && len(damage) > limit {
				damage = damage[:limit]
			}

			rows := make([][]string, 0, len(damage))
			for _, d := range damage {
				rows = append(rows, []string{
					fmt.Sprintf("%d", d.id),
					fmt.Sprintf("%d", d.regions),
					fmt.Sprintf("%d", d.samples),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Regions", "Samples"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of fields to show")
	return cmd
}
