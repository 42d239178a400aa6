package dropout

import "fieldstack/internal/fieldsource"

// regionClass partitions a line into the contexts a dropout can fall in.
// Replacement scoring only compares like with like: a colourburst repair is
// judged against burst samples, a picture repair against picture samples.
type regionClass int

const (
	classUnknown regionClass = iota
	classColourBurst
	classVisibleLine
)

func (c regionClass) String() string {
	switch c {
	case classColourBurst:
		return "colourburst"
	case classVisibleLine:
		return "visible"
	default:
		return "unknown"
	}
}

// classify maps a region to the single context it occupies. Regions
// straddling a boundary must be split first.
func classify(r fieldsource.Region, desc fieldsource.Descriptor) regionClass {
	switch {
	case r.Start >= desc.ColorburstStart && r.End <= desc.ColorburstEnd:
		return classColourBurst
	case r.Start >= desc.ActiveStart:
		return classVisibleLine
	default:
		return classUnknown
	}
}

// splitRegion cuts a region at the descriptor's classification boundaries so
// every piece sits inside exactly one context. Well-formed inputs come back
// unchanged as a single-element slice.
func splitRegion(r fieldsource.Region, desc fieldsource.Descriptor) []fieldsource.Region {
	boundaries := []int{desc.ColorburstStart, desc.ColorburstEnd, desc.ActiveStart}

	out := make([]fieldsource.Region, 0, 2)
	current := r
	for _, b := range boundaries {
		if b <= current.Start || b >= current.End {
			continue
		}
		head := current
		head.End = b
		out = append(out, head)
		current.Start = b
	}
	return append(out, current)
}
