package dropout

import (
	"fieldstack/internal/pipeline"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultMaxReplacementDistance = 10
	DefaultCacheFields            = 32
)

// Config controls how dropout regions are repaired.
type Config struct {
	// OvercorrectExtension widens every corrected region by this many
	// samples on each side, covering ringing at dropout edges.
	OvercorrectExtension int
	// IntrafieldOnly restricts the replacement search to the damaged field
	// itself; the paired field is never consulted.
	IntrafieldOnly bool
	// MaxReplacementDistance bounds how many lines away from the damaged
	// line a replacement may be taken.
	MaxReplacementDistance int
	// MatchChromaPhase restricts candidate lines to those whose subcarrier
	// phase matches the damaged line, at the cost of a sparser search.
	MatchChromaPhase bool
	// HighlightCorrections fills corrected regions with peak white instead
	// of repairing them. Debug visualization only.
	HighlightCorrections bool
	// CacheFields is the bounded cache capacity per channel, in fields.
	CacheFields int
}

func (c Config) withDefaults() Config {
	if c.MaxReplacementDistance == 0 {
		c.MaxReplacementDistance = DefaultMaxReplacementDistance
	}
	if c.CacheFields <= 0 {
		c.CacheFields = DefaultCacheFields
	}
	return c
}

func (c Config) validate() error {
	if c.MaxReplacementDistance < 0 {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "validate config",
			"max replacement distance must not be negative", nil)
	}
	if c.OvercorrectExtension < 0 {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "validate config",
			"overcorrect extension must not be negative", nil)
	}
	return nil
}
