package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fieldstack/internal/stage"
)

func newStagesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the available processing stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}

			titler := cases.Title(language.Und)
			rows := make([][]string, 0, len(reg.Names()))
			for _, id := range reg.Names() {
				s, err := reg.New(id)
				if err != nil {
					return err
				}
				desc := s.Describe()
				rows = append(rows, []string{
					desc.ID,
					desc.Label,
					titler.String(desc.Category),
					s.Version(),
					fmt.Sprintf("%d", s.RequiredInputCount()),
					fmt.Sprintf("%d", s.OutputCount()),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Label", "Category", "Version", "Inputs", "Outputs"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.AddCommand(newStageShowCommand(ctx))
	return cmd
}

func newStageShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <stage-id>",
		Short: "Show a stage's tunable parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			s, err := reg.New(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			desc := s.Describe()
			fmt.Fprintf(out, "%s (%s) version %s\n", desc.Label, desc.ID, s.Version())

			parameterized, ok := s.(stage.Parameterized)
			if !ok {
				fmt.Fprintln(out, "No tunable parameters")
				return nil
			}

			rows := make([][]string, 0, 8)
			for _, p := range parameterized.ParameterDescriptors() {
				rows = append(rows, []string{
					p.Name,
					parameterTypeLabel(p.Type),
					fmt.Sprintf("%v", p.Default),
					parameterRange(p),
					p.Description,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Parameter", "Type", "Default", "Range", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func parameterTypeLabel(t stage.ParameterType) string {
	switch t {
	case stage.ParameterBool:
		return "bool"
	case stage.ParameterInt:
		return "int"
	case stage.ParameterChoice:
		return "choice"
	default:
		return "string"
	}
}

func parameterRange(p stage.ParameterDescriptor) string {
	switch p.Type {
	case stage.ParameterInt:
		return fmt.Sprintf("%d..%d", p.Min, p.Max)
	case stage.ParameterChoice:
		return strings.Join(p.Choices, ", ")
	default:
		return ""
	}
}
