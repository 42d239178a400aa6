package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/logging"
	"fieldstack/internal/pipeline"
	"fieldstack/internal/rawsource"
	"fieldstack/internal/report"
	"fieldstack/internal/stacker"
)

func newStackCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var chromaPath string
	var dropoutsPath string
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "stack <capture.toml> [capture.toml...]",
		Short: "Combine parallel captures of the same material",
		Args:  cobra.RangeArgs(1, stacker.MaxSources),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputPath) == "" {
				return fmt.Errorf("--output is required")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cfg, err := ctx.stackingConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(modeFlag) != "" {
				if cfg.Mode, err = stacker.ParseMode(modeFlag); err != nil {
					return err
				}
			}

			sources := make([]fieldsource.Source, 0, len(args))
			for _, path := range args {
				src, err := rawsource.Load(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				sources = append(sources, src)
			}

			stacked, err := stacker.New(sources, cfg, logger)
			if err != nil {
				return err
			}

			runCtx, runID := pipeline.NewRunContext(cmd.Context(), stacker.StageID)
			store, err := ctx.openReport(runCtx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				if err := store.BeginRun(runCtx, runID, stacker.StageID); err != nil {
					return err
				}
			}
			log := logging.WithContext(runCtx, logger)
			log.Info("stacking captures",
				logging.Int("sources", len(sources)),
				logging.Int("fields", stacked.FieldCount()))

			if err := writeChannels(outputPath, chromaPath, stacked); err != nil {
				return err
			}
			if strings.TrimSpace(dropoutsPath) != "" {
				if err := writeRemainingDropouts(dropoutsPath, stacked); err != nil {
					return err
				}
			}

			stats := stacked.Stats()
			if store != nil {
				if err := store.FinishRun(runCtx, runID, report.Counters{
					FieldsProcessed:  stats.FieldsStacked,
					SamplesDropout:   stats.DropoutSamples,
					SamplesRecovered: stats.RecoveredSamples,
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stacked %d fields from %d sources: %d dropout samples seen, %d recovered\n",
				stats.FieldsStacked, len(sources), stats.DropoutSamples, stats.RecoveredSamples)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination sample file (luma plane for separated captures)")
	cmd.Flags().StringVar(&chromaPath, "chroma-output", "", "Destination for the chroma plane of separated captures")
	cmd.Flags().StringVar(&dropoutsPath, "dropouts-output", "", "Write the dropouts that survived stacking to this file")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Override the configured stack mode")
	return cmd
}

func writeRemainingDropouts(path string, src fieldsource.Source) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dropout file: %w", err)
	}
	defer f.Close()
	return rawsource.WriteDropouts(f, src)
}
