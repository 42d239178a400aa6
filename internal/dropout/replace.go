package dropout

import (
	"math"

	"fieldstack/internal/fieldsource"
)

// Replacement scoring parameters. The quality metric is the mean absolute
// difference, over up to scoreMargin known-good samples on each side of the
// repair window, between the damaged line and the candidate line. Lower is
// better; a candidate scoring at or below goodScore is accepted without
// consulting the paired field.
const (
	scoreMargin = 12
	goodScore   = 1200.0
)

type candidate struct {
	field      fieldsource.FieldID
	line       int
	distance   int
	interfield bool
	score      float64
}

// findReplacement searches for the best replacement line for one
// classified (sub-)region. The search runs outward over same-field lines at
// phase-preserving offsets up to the configured distance, then falls back to
// the same line of the paired field when permitted. The boolean result is
// false when no usable candidate exists.
func findReplacement(src fieldsource.Source, id fieldsource.FieldID, desc fieldsource.Descriptor, region fieldsource.Region, ch fieldsource.Channel, cfg Config) (candidate, bool) {
	wStart, wEnd := repairWindow(region, desc, cfg)
	if wEnd <= wStart {
		return candidate{}, false
	}

	origLine, err := src.Line(id, ch, region.Line)
	if err != nil {
		return candidate{}, false
	}
	origHints := src.DropoutHints(id)

	best := candidate{score: math.Inf(1)}
	found := false

	step := phaseStep(desc, ch, cfg)
	for dist := step; dist <= cfg.MaxReplacementDistance; dist += step {
		for _, line := range []int{region.Line - dist, region.Line + dist} {
			if line < 0 || line >= desc.Height {
				continue
			}
			if !windowClean(origHints, line, wStart, wEnd) {
				continue
			}
			candLine, err := src.Line(id, ch, line)
			if err != nil {
				continue
			}
			score := scoreCandidate(origLine, candLine, origHints, region.Line, wStart, wEnd)
			if score < best.score {
				best = candidate{field: id, line: line, distance: dist, score: score}
				found = true
			}
		}
	}

	if found && best.score <= goodScore {
		return best, true
	}
	if cfg.IntrafieldOnly {
		return best, found
	}

	// No good same-field candidate; consult the same line of the paired field.
	if paired, ok := pairedField(src, id); ok {
		pairedHints := src.DropoutHints(paired)
		if windowClean(pairedHints, region.Line, wStart, wEnd) {
			if candLine, err := src.Line(paired, ch, region.Line); err == nil {
				score := scoreCandidate(origLine, candLine, origHints, region.Line, wStart, wEnd)
				if !found || score < best.score {
					best = candidate{field: paired, line: region.Line, interfield: true, score: score}
					found = true
				}
			}
		}
	}

	return best, found
}

// repairWindow widens the region by the overcorrect extension and clamps it
// to the line.
func repairWindow(region fieldsource.Region, desc fieldsource.Descriptor, cfg Config) (int, int) {
	start := region.Start - cfg.OvercorrectExtension
	end := region.End + cfg.OvercorrectExtension
	if start < 0 {
		start = 0
	}
	if end > desc.Width {
		end = desc.Width
	}
	return start, end
}

// phaseStep returns the line offset granularity that preserves comb/chroma
// phase for the channel being repaired. Luma carries no subcarrier, so every
// field line is a candidate.
func phaseStep(desc fieldsource.Descriptor, ch fieldsource.Channel, cfg Config) int {
	if ch == fieldsource.ChannelLuma {
		return 1
	}
	if cfg.MatchChromaPhase {
		return desc.Format.ChromaPhasePeriod()
	}
	return 2
}

// windowClean reports whether no dropout hint touches [start, end) on the
// given line.
func windowClean(hints []fieldsource.Region, line, start, end int) bool {
	probe := fieldsource.Region{Line: line, Start: start, End: end}
	for _, h := range hints {
		if h.Overlaps(probe) {
			return false
		}
	}
	return true
}

// scoreCandidate computes the mean absolute difference between damaged and
// candidate lines over the known-good margin samples flanking the repair
// window. Margin samples that fall inside another dropout on the damaged
// line are skipped. With no usable margin sample the score is +Inf: the
// candidate stays valid but loses to anything measurable.
func scoreCandidate(orig, cand []uint16, origHints []fieldsource.Region, line, wStart, wEnd int) float64 {
	var sum float64
	var count int

	probe := func(sample int) {
		if sample < 0 || sample >= len(orig) || sample >= len(cand) {
			return
		}
		for _, h := range origHints {
			if h.Contains(line, sample) {
				return
			}
		}
		sum += math.Abs(float64(orig[sample]) - float64(cand[sample]))
		count++
	}

	for i := 1; i <= scoreMargin; i++ {
		probe(wStart - i)
		probe(wEnd + i - 1)
	}

	if count == 0 {
		return math.Inf(1)
	}
	return sum / float64(count)
}

// pairedField returns the other field of the interlaced frame, preferring
// the following field.
func pairedField(src fieldsource.Source, id fieldsource.FieldID) (fieldsource.FieldID, bool) {
	if src.HasField(id + 1) {
		return id + 1, true
	}
	if src.HasField(id - 1) {
		return id - 1, true
	}
	return 0, false
}
