package stacker

import (
	"fmt"
	"strings"

	"fieldstack/internal/pipeline"
)

// StageID is the stable registry identifier for the stacking stage.
const StageID = "source-stack"

// MaxSources bounds how many captures one stacker may combine.
const MaxSources = 16

// Defaults applied by Config.withDefaults.
const (
	DefaultSmartThreshold = 40
	DefaultCacheFields    = 16
)

// Mode selects the per-sample combination statistic.
type Mode int

const (
	// ModeAuto picks SmartMean for three or more sources and Mean for two.
	ModeAuto Mode = iota
	ModeMean
	ModeMedian
	ModeSmartMean
	ModeSmartNeighbor
	ModeNeighbor
)

func (m Mode) String() string {
	switch m {
	case ModeMean:
		return "mean"
	case ModeMedian:
		return "median"
	case ModeSmartMean:
		return "smart-mean"
	case ModeSmartNeighbor:
		return "smart-neighbor"
	case ModeNeighbor:
		return "neighbor"
	default:
		return "auto"
	}
}

// ParseMode maps a config/CLI mode label to a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ModeAuto, nil
	case "mean":
		return ModeMean, nil
	case "median":
		return ModeMedian, nil
	case "smart-mean", "smartmean", "smart_mean":
		return ModeSmartMean, nil
	case "smart-neighbor", "smartneighbor", "smart_neighbor":
		return ModeSmartNeighbor, nil
	case "neighbor", "neighbour":
		return ModeNeighbor, nil
	default:
		return ModeAuto, fmt.Errorf("stack mode: unsupported value %q", value)
	}
}

// SideMode selects how the audio and EFM side channels are combined.
type SideMode int

const (
	// SideDisabled passes the best source's channel through unchanged.
	SideDisabled SideMode = iota
	SideMean
	SideMedian
)

func (m SideMode) String() string {
	switch m {
	case SideMean:
		return "mean"
	case SideMedian:
		return "median"
	default:
		return "disabled"
	}
}

// ParseSideMode maps a config/CLI side-channel mode label to a SideMode.
func ParseSideMode(value string) (SideMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "disabled", "off":
		return SideDisabled, nil
	case "mean":
		return SideMean, nil
	case "median":
		return SideMedian, nil
	default:
		return SideDisabled, fmt.Errorf("side-channel mode: unsupported value %q", value)
	}
}

// Config controls how sources are combined.
type Config struct {
	Mode Mode
	// SmartThreshold bounds, on an 8-bit scale (1..128), how far a sample
	// may sit from the per-position median and still contribute to the
	// smart-mean subset. Internally scaled to the 16-bit sample range.
	// Zero selects the default.
	SmartThreshold int
	// NoDiffDOD disables differential dropout recovery for positions
	// flagged dropout in every source.
	NoDiffDOD bool
	// Passthrough includes dropout-flagged samples in the statistic instead
	// of excluding them.
	Passthrough bool
	// Threads is the number of line-range workers per field; zero means one
	// per available CPU.
	Threads int

	AudioMode SideMode
	EFMMode   SideMode

	// CacheFields is the bounded cache capacity per representation, in fields.
	CacheFields int
}

func (c Config) withDefaults() Config {
	if c.SmartThreshold == 0 {
		c.SmartThreshold = DefaultSmartThreshold
	}
	if c.CacheFields <= 0 {
		c.CacheFields = DefaultCacheFields
	}
	return c
}

func (c Config) validate() error {
	if c.Mode < ModeAuto || c.Mode > ModeNeighbor {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "validate config",
			fmt.Sprintf("unknown stack mode %d", c.Mode), nil)
	}
	if c.SmartThreshold < 0 || c.SmartThreshold > 128 {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "validate config",
			fmt.Sprintf("smart threshold %d outside 0..128", c.SmartThreshold), nil)
	}
	if c.Threads < 0 {
		return pipeline.Wrap(pipeline.ErrConfiguration, StageID, "validate config",
			"thread count must not be negative", nil)
	}
	return nil
}

// threshold16 converts the 8-bit smart threshold to the 16-bit sample scale.
func (c Config) threshold16() int {
	return c.SmartThreshold << 8
}

// effectiveMode resolves ModeAuto for the given source count.
func (c Config) effectiveMode(sources int) Mode {
	if c.Mode != ModeAuto {
		return c.Mode
	}
	if sources >= 3 {
		return ModeSmartMean
	}
	return ModeMean
}
