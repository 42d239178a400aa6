package fieldsource

import (
	"fmt"
	"strings"
)

// FieldID identifies one interlaced field. IDs are monotonically increasing
// within a capture and are never reused.
type FieldID int64

// Parity marks whether a field carries the top (odd) or bottom (even) lines
// of the interlaced frame.
type Parity int

const (
	ParityTop Parity = iota
	ParityBottom
)

func (p Parity) String() string {
	if p == ParityBottom {
		return "bottom"
	}
	return "top"
}

// Opposite returns the parity of the paired field.
func (p Parity) Opposite() Parity {
	if p == ParityTop {
		return ParityBottom
	}
	return ParityTop
}

// Format tags the video standard a capture was sampled from.
type Format int

const (
	FormatNTSC Format = iota
	FormatPAL
)

func (f Format) String() string {
	if f == FormatPAL {
		return "pal"
	}
	return "ntsc"
}

// ParseFormat maps a config/CLI format label to a Format.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ntsc", "":
		return FormatNTSC, nil
	case "pal":
		return FormatPAL, nil
	default:
		return FormatNTSC, fmt.Errorf("video format: unsupported value %q", value)
	}
}

// 16-bit sample levels shared by both supported formats. 0 IRE maps to
// blanking, 100 IRE to peak white.
const (
	SampleIRE0   = 0x4000
	SampleIRE100 = 0xD300
)

// ChromaPhasePeriod returns the line period after which the subcarrier phase
// repeats within one field. Replacement-line searches that must preserve
// chroma phase step by this amount.
func (f Format) ChromaPhasePeriod() int {
	if f == FormatPAL {
		return 4
	}
	return 2
}

// Descriptor captures the immutable per-field geometry the correction and
// stacking stages need: line/sample dimensions plus the horizontal blanking
// boundaries that separate colourburst from visible picture.
type Descriptor struct {
	Parity Parity
	Format Format

	// Width is samples per line, Height is lines per field.
	Width  int
	Height int

	// ColorburstStart/ColorburstEnd bound the colourburst region of each
	// line; ActiveStart is the first sample of visible picture. All are
	// half-open sample offsets within a line.
	ColorburstStart int
	ColorburstEnd   int
	ActiveStart     int
}

// Valid reports whether the descriptor describes usable geometry.
func (d Descriptor) Valid() bool {
	if d.Width <= 0 || d.Height <= 0 {
		return false
	}
	if d.ColorburstStart < 0 || d.ColorburstEnd < d.ColorburstStart {
		return false
	}
	return d.ActiveStart >= d.ColorburstEnd && d.ActiveStart < d.Width
}
