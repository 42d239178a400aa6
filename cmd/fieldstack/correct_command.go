package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fieldstack/internal/dropout"
	"fieldstack/internal/fieldsource"
	"fieldstack/internal/logging"
	"fieldstack/internal/pipeline"
	"fieldstack/internal/rawsource"
	"fieldstack/internal/report"
)

const warningTableLimit = 20

func newCorrectCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var chromaPath string

	cmd := &cobra.Command{
		Use:   "correct <capture.toml>",
		Short: "Repair dropouts in a single capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputPath) == "" {
				return fmt.Errorf("--output is required")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cfg, err := ctx.correctionConfig()
			if err != nil {
				return err
			}

			src, err := rawsource.Load(args[0])
			if err != nil {
				return err
			}

			corrector, err := dropout.New(src, cfg, logger)
			if err != nil {
				return err
			}

			runCtx, runID := pipeline.NewRunContext(cmd.Context(), dropout.StageID)
			store, err := ctx.openReport(runCtx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				if err := store.BeginRun(runCtx, runID, dropout.StageID); err != nil {
					return err
				}
			}
			log := logging.WithContext(runCtx, logger)
			log.Info("correcting capture",
				logging.String("capture", args[0]),
				logging.Int("fields", src.FieldCount()))

			if err := writeChannels(outputPath, chromaPath, corrector); err != nil {
				return err
			}

			stats := corrector.Stats()
			warnings := corrector.Warnings()
			if store != nil {
				if err := store.AddWarnings(runCtx, runID, warningRecords(warnings)); err != nil {
					return err
				}
				if err := store.FinishRun(runCtx, runID, report.Counters{
					FieldsProcessed:    stats.FieldsCorrected,
					RegionsCorrected:   stats.RegionsCorrected,
					RegionsUncorrected: stats.RegionsUncorrected,
					SamplesRecovered:   stats.SamplesReplaced,
				}); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Corrected %d fields: %d regions repaired, %d left uncorrected, %d samples replaced\n",
				stats.FieldsCorrected, stats.RegionsCorrected, stats.RegionsUncorrected, stats.SamplesReplaced)
			printWarnings(out, warnings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination sample file (luma plane for separated captures)")
	cmd.Flags().StringVar(&chromaPath, "chroma-output", "", "Destination for the chroma plane of separated captures")
	return cmd
}

// writeChannels streams every channel of src to disk. Separated captures get
// the chroma plane next to the luma file unless a destination is given.
func writeChannels(outputPath, chromaPath string, src fieldsource.Source) error {
	if !src.SeparateChannels() {
		return rawsource.WriteSamples(outputPath, src, fieldsource.ChannelComposite)
	}

	if err := rawsource.WriteSamples(outputPath, src, fieldsource.ChannelLuma); err != nil {
		return err
	}
	if strings.TrimSpace(chromaPath) == "" {
		chromaPath = derivedChromaPath(outputPath)
	}
	return rawsource.WriteSamples(chromaPath, src, fieldsource.ChannelChroma)
}

func derivedChromaPath(lumaPath string) string {
	ext := filepath.Ext(lumaPath)
	return strings.TrimSuffix(lumaPath, ext) + ".chroma" + ext
}

func warningRecords(warnings []dropout.Warning) []report.WarningRecord {
	records := make([]report.WarningRecord, 0, len(warnings))
	for _, w := range warnings {
		records = append(records, report.WarningRecord{
			FieldID: int64(w.Field),
			Channel: w.Channel.String(),
			Line:    w.Region.Line,
			Start:   w.Region.Start,
			End:     w.Region.End,
			Reason:  w.Reason,
		})
	}
	return records
}

func printWarnings(out io.Writer, warnings []dropout.Warning) {
	if len(warnings) == 0 {
		return
	}

	rows := make([][]string, 0, len(warnings))
	for i, w := range warnings {
		if i == warningTableLimit {
			break
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", w.Field),
			w.Channel.String(),
			w.Region.String(),
			w.Reason,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Field", "Channel", "Region", "Reason"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	if len(warnings) > warningTableLimit {
		fmt.Fprintf(out, "...and %d more\n", len(warnings)-warningTableLimit)
	}
}
