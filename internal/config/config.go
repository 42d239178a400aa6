package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// Path appends a log file next to stderr when set.
	Path string `toml:"path"`
}

// Cache contains bounded-cache sizing.
type Cache struct {
	// Fields is the per-representation cache capacity in fields. Zero
	// derives a capacity from system memory.
	Fields int `toml:"fields"`
}

// Correction contains dropout-correction settings.
type Correction struct {
	OvercorrectExtension   int  `toml:"overcorrect_extension"`
	IntrafieldOnly         bool `toml:"intrafield_only"`
	MaxReplacementDistance int  `toml:"max_replacement_distance"`
	MatchChromaPhase       bool `toml:"match_chroma_phase"`
	HighlightCorrections   bool `toml:"highlight_corrections"`
}

// Stacking contains multi-source stacking settings.
type Stacking struct {
	Mode           string `toml:"mode"`
	SmartThreshold int    `toml:"smart_threshold"`
	NoDiffDOD      bool   `toml:"no_diff_dod"`
	Passthrough    bool   `toml:"passthrough"`
	Threads        int    `toml:"threads"`
	AudioMode      string `toml:"audio_mode"`
	EFMMode        string `toml:"efm_mode"`
}

// Report contains the run/warning report store configuration.
type Report struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config is the root configuration document.
type Config struct {
	Logging    Logging    `toml:"logging"`
	Cache      Cache      `toml:"cache"`
	Correction Correction `toml:"correction"`
	Stacking   Stacking   `toml:"stacking"`
	Report     Report     `toml:"report"`
}

// Load reads the file at path over the defaults, then normalizes and
// validates the result. A missing file at the default location is not an
// error; an explicitly requested missing file is.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the annotated sample configuration to path.
func WriteSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fieldstack.toml"
	}
	return home + "/.config/fieldstack/config.toml"
}
