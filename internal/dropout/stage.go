package dropout

import (
	"context"
	"fmt"
	"log/slog"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/pipeline"
	"fieldstack/internal/stage"
)

// stageVersion bumps when correction semantics change in a way that makes
// cached render output stale.
const stageVersion = "1.1"

// Stage adapts the corrector to the graph-executor contract.
type Stage struct {
	cfg    Config
	logger *slog.Logger
}

// NewStage returns a dropout-correction stage with default settings.
func NewStage(logger *slog.Logger) *Stage {
	return &Stage{cfg: Config{}.withDefaults(), logger: logger}
}

// Register publishes the stage in the registry under its stable id.
func Register(reg *stage.Registry, logger *slog.Logger) error {
	return reg.Register(StageID, func() stage.Stage { return NewStage(logger) })
}

func (s *Stage) Version() string { return stageVersion }

func (s *Stage) Describe() stage.Descriptor {
	return stage.Descriptor{ID: StageID, Label: "Dropout Correct", Category: "restore"}
}

func (s *Stage) RequiredInputCount() int { return 1 }

func (s *Stage) OutputCount() int { return 1 }

// Execute wraps the single input in a corrector. The wrapper is lazy;
// correction happens as downstream consumers pull fields.
func (s *Stage) Execute(ctx context.Context, inputs []fieldsource.Source, params stage.Parameters) ([]fieldsource.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) != 1 {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, StageID, "execute",
			fmt.Sprintf("expected 1 input, got %d", len(inputs)), nil)
	}
	if err := s.SetParameters(params); err != nil {
		return nil, err
	}

	corrector, err := New(inputs[0], s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	return []fieldsource.Source{corrector}, nil
}

func (s *Stage) ParameterDescriptors() []stage.ParameterDescriptor {
	return []stage.ParameterDescriptor{
		{
			Name: "overcorrect_extension", Label: "Overcorrect extension",
			Description: "Samples added to each side of every corrected region",
			Type:        stage.ParameterInt, Default: 0, Min: 0, Max: 64,
		},
		{
			Name: "intrafield_only", Label: "Intrafield only",
			Description: "Never take replacements from the paired field",
			Type:        stage.ParameterBool, Default: false,
		},
		{
			Name: "max_replacement_distance", Label: "Max replacement distance",
			Description: "How many lines away a replacement may be taken",
			Type:        stage.ParameterInt, Default: DefaultMaxReplacementDistance, Min: 1, Max: 100,
		},
		{
			Name: "match_chroma_phase", Label: "Match chroma phase",
			Description: "Only use replacement lines with matching subcarrier phase",
			Type:        stage.ParameterBool, Default: false,
		},
		{
			Name: "highlight_corrections", Label: "Highlight corrections",
			Description: "Fill corrected regions with peak white for inspection",
			Type:        stage.ParameterBool, Default: false,
		},
	}
}

func (s *Stage) Parameters() stage.Parameters {
	return stage.Parameters{
		"overcorrect_extension":    s.cfg.OvercorrectExtension,
		"intrafield_only":          s.cfg.IntrafieldOnly,
		"max_replacement_distance": s.cfg.MaxReplacementDistance,
		"match_chroma_phase":       s.cfg.MatchChromaPhase,
		"highlight_corrections":    s.cfg.HighlightCorrections,
	}
}

func (s *Stage) SetParameters(params stage.Parameters) error {
	cfg := s.cfg
	var err error
	if cfg.OvercorrectExtension, err = params.Int("overcorrect_extension", cfg.OvercorrectExtension); err != nil {
		return err
	}
	if cfg.IntrafieldOnly, err = params.Bool("intrafield_only", cfg.IntrafieldOnly); err != nil {
		return err
	}
	if cfg.MaxReplacementDistance, err = params.Int("max_replacement_distance", cfg.MaxReplacementDistance); err != nil {
		return err
	}
	if cfg.MatchChromaPhase, err = params.Bool("match_chroma_phase", cfg.MatchChromaPhase); err != nil {
		return err
	}
	if cfg.HighlightCorrections, err = params.Bool("highlight_corrections", cfg.HighlightCorrections); err != nil {
		return err
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

// PreviewField corrects a single field of src for interactive display.
func (s *Stage) PreviewField(ctx context.Context, src fieldsource.Source, id fieldsource.FieldID) (*fieldsource.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	corrector, err := New(src, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	ch := fieldsource.ChannelComposite
	if src.SeparateChannels() {
		ch = fieldsource.ChannelLuma
	}
	return corrector.Field(id, ch)
}
