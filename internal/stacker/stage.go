package stacker

import (
	"context"
	"fmt"
	"log/slog"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/pipeline"
	"fieldstack/internal/stage"
)

const stageVersion = "1.2"

// Stage adapts the stacker to the graph-executor contract.
type Stage struct {
	cfg    Config
	logger *slog.Logger
}

// NewStage returns a stacking stage with default settings.
func NewStage(logger *slog.Logger) *Stage {
	return &Stage{cfg: Config{}.withDefaults(), logger: logger}
}

// Register publishes the stage in the registry under its stable id.
func Register(reg *stage.Registry, logger *slog.Logger) error {
	return reg.Register(StageID, func() stage.Stage { return NewStage(logger) })
}

func (s *Stage) Version() string { return stageVersion }

func (s *Stage) Describe() stage.Descriptor {
	return stage.Descriptor{ID: StageID, Label: "Source Stack", Category: "restore"}
}

// RequiredInputCount is the minimum; the stage accepts up to MaxSources.
func (s *Stage) RequiredInputCount() int { return 1 }

func (s *Stage) OutputCount() int { return 1 }

// Execute wraps the inputs in a stacker. The wrapper is lazy; combination
// happens as downstream consumers pull fields.
func (s *Stage) Execute(ctx context.Context, inputs []fieldsource.Source, params stage.Parameters) ([]fieldsource.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.SetParameters(params); err != nil {
		return nil, err
	}

	stacked, err := New(inputs, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	return []fieldsource.Source{stacked}, nil
}

func (s *Stage) ParameterDescriptors() []stage.ParameterDescriptor {
	modes := []string{"auto", "mean", "median", "smart-mean", "smart-neighbor", "neighbor"}
	sideModes := []string{"disabled", "mean", "median"}
	return []stage.ParameterDescriptor{
		{
			Name: "mode", Label: "Stack mode",
			Description: "Per-sample combination statistic",
			Type:        stage.ParameterChoice, Default: "auto", Choices: modes,
		},
		{
			Name: "smart_threshold", Label: "Smart threshold",
			Description: "Distance from the median (8-bit scale) still included in the smart mean",
			Type:        stage.ParameterInt, Default: DefaultSmartThreshold, Min: 0, Max: 128,
		},
		{
			Name: "no_diff_dod", Label: "Disable differential recovery",
			Description: "Leave positions flagged in every source unrecovered",
			Type:        stage.ParameterBool, Default: false,
		},
		{
			Name: "passthrough", Label: "Passthrough",
			Description: "Include dropout-flagged samples in the statistic",
			Type:        stage.ParameterBool, Default: false,
		},
		{
			Name: "threads", Label: "Threads",
			Description: "Line-range workers per field; 0 uses every CPU",
			Type:        stage.ParameterInt, Default: 0, Min: 0, Max: 256,
		},
		{
			Name: "audio_mode", Label: "Audio mode",
			Description: "How the analogue audio streams are combined",
			Type:        stage.ParameterChoice, Default: "disabled", Choices: sideModes,
		},
		{
			Name: "efm_mode", Label: "EFM mode",
			Description: "How the EFM T-value streams are combined",
			Type:        stage.ParameterChoice, Default: "disabled", Choices: sideModes,
		},
	}
}

func (s *Stage) Parameters() stage.Parameters {
	return stage.Parameters{
		"mode":            s.cfg.Mode.String(),
		"smart_threshold": s.cfg.SmartThreshold,
		"no_diff_dod":     s.cfg.NoDiffDOD,
		"passthrough":     s.cfg.Passthrough,
		"threads":         s.cfg.Threads,
		"audio_mode":      s.cfg.AudioMode.String(),
		"efm_mode":        s.cfg.EFMMode.String(),
	}
}

func (s *Stage) SetParameters(params stage.Parameters) error {
	cfg := s.cfg

	modeName, err := params.String("mode", cfg.Mode.String())
	if err != nil {
		return err
	}
	if cfg.Mode, err = ParseMode(modeName); err != nil {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "read parameter", err.Error(), nil)
	}
	if cfg.SmartThreshold, err = params.Int("smart_threshold", cfg.SmartThreshold); err != nil {
		return err
	}
	if cfg.NoDiffDOD, err = params.Bool("no_diff_dod", cfg.NoDiffDOD); err != nil {
		return err
	}
	if cfg.Passthrough, err = params.Bool("passthrough", cfg.Passthrough); err != nil {
		return err
	}
	if cfg.Threads, err = params.Int("threads", cfg.Threads); err != nil {
		return err
	}
	audioName, err := params.String("audio_mode", cfg.AudioMode.String())
	if err != nil {
		return err
	}
	if cfg.AudioMode, err = ParseSideMode(audioName); err != nil {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "read parameter", err.Error(), nil)
	}
	efmName, err := params.String("efm_mode", cfg.EFMMode.String())
	if err != nil {
		return err
	}
	if cfg.EFMMode, err = ParseSideMode(efmName); err != nil {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "read parameter", err.Error(), nil)
	}

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// PreviewField stacks a single field for interactive display. The preview
// source must itself be a stacker output or a plain source; with a plain
// source this renders it unchanged.
func (s *Stage) PreviewField(ctx context.Context, src fieldsource.Source, id fieldsource.FieldID) (*fieldsource.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := fieldsource.ChannelComposite
	if src.SeparateChannels() {
		ch = fieldsource.ChannelLuma
	}
	buf, err := src.Field(id, ch)
	if err != nil {
		return nil, fmt.Errorf("preview field %d: %w", id, err)
	}
	return buf, nil
}
