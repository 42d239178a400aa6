package fieldsource

import (
	"fmt"
	"sort"
)

// Basis records how a dropout region was established.
type Basis int

const (
	// BasisSampleDerived regions were detected from the sample data itself.
	BasisSampleDerived Basis = iota
	// BasisHintDerived regions came from upstream metadata (RF decoder hints).
	BasisHintDerived
	// BasisCorroborated regions were confirmed by more than one source.
	BasisCorroborated
)

func (b Basis) String() string {
	switch b {
	case BasisHintDerived:
		return "hint"
	case BasisCorroborated:
		return "corroborated"
	default:
		return "sample"
	}
}

// Region marks a half-open run of corrupted samples [Start, End) on one line
// of a field.
type Region struct {
	Line  int
	Start int
	End   int
	Basis Basis
}

func (r Region) String() string {
	return fmt.Sprintf("%d:%d-%d", r.Line, r.Start, r.End)
}

// Length returns the number of samples covered by the region.
func (r Region) Length() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Overlaps reports whether two regions share at least one sample.
func (r Region) Overlaps(other Region) bool {
	return r.Line == other.Line && r.Start < other.End && other.Start < r.End
}

// Contains reports whether the sample offset on the region's line falls
// inside the region.
func (r Region) Contains(line, sample int) bool {
	return r.Line == line && sample >= r.Start && sample < r.End
}

// SortRegions orders regions by line, then start sample. Well-formed inputs
// never overlap within a line, so this yields a canonical order.
func SortRegions(regions []Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Line != regions[j].Line {
			return regions[i].Line < regions[j].Line
		}
		return regions[i].Start < regions[j].Start
	})
}

// CloneRegions returns an independent copy of the region slice.
func CloneRegions(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionsOnLine filters regions down to the given line, preserving order.
func RegionsOnLine(regions []Region, line int) []Region {
	var out []Region
	for _, r := range regions {
		if r.Line == line {
			out = append(out, r)
		}
	}
	return out
}
