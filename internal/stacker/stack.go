package stacker

import (
	"fmt"
	"runtime"
	"sync"

	"fieldstack/internal/fieldsource"
	"fieldstack/internal/logging"
)

// stackInput is one source's contribution to a field: its sample planes and
// its dropout regions grouped by line.
type stackInput struct {
	index   int
	planes  map[fieldsource.Channel]*fieldsource.Buffer
	regions [][]fieldsource.Region
}

func (in *stackInput) flagged(line, sample int) bool {
	if line < 0 || line >= len(in.regions) {
		return false
	}
	for _, r := range in.regions[line] {
		if sample >= r.Start && sample < r.End {
			return true
		}
	}
	return false
}

// workerCounters accumulate per chunk and are summed after all workers
// join; they are never shared while workers run.
type workerCounters struct {
	samplesStacked   int64
	dropoutSamples   int64
	recoveredSamples int64
}

func (c *workerCounters) add(other workerCounters) {
	c.samplesStacked += other.samplesStacked
	c.dropoutSamples += other.dropoutSamples
	c.recoveredSamples += other.recoveredSamples
}

// ensureStackedLocked computes and caches every representation of one field:
// sample planes and remaining dropout regions. The caller holds s.mu. All
// caches for the field are populated together, so a cached field is always
// fully computed.
func (s *Stacker) ensureStackedLocked(id fieldsource.FieldID) error {
	inputs, desc, err := s.loadInputs(id)
	if err != nil {
		return err
	}

	// Identity law: with one contributing capture there is nothing to
	// combine, and the output must be bit-identical to it.
	if len(inputs) == 1 {
		for ch, cache := range s.planes {
			cache.Put(id, inputs[0].planes[ch])
		}
		s.dropouts.Put(id, s.sources[inputs[0].index].DropoutHints(id))
		s.stats.FieldsStacked++
		return nil
	}

	mode := s.cfg.effectiveMode(len(inputs))
	var totals workerCounters
	var remaining []fieldsource.Region

	firstChannel := true
	for ch, cache := range s.planes {
		out := fieldsource.NewBuffer(desc.Width, desc.Height)
		counters, regions := s.stackPlane(inputs, desc, ch, mode, out, firstChannel)
		totals.add(counters)
		if firstChannel {
			remaining = regions
		}
		cache.Put(id, out)
		firstChannel = false
	}

	fieldsource.SortRegions(remaining)
	s.dropouts.Put(id, remaining)

	s.stats.FieldsStacked++
	s.stats.SamplesStacked += totals.samplesStacked
	s.stats.DropoutSamples += totals.dropoutSamples
	s.stats.RecoveredSamples += totals.recoveredSamples

	s.logger.Debug("field stacked",
		logging.Int64(logging.FieldFieldID, int64(id)),
		logging.Int("sources", len(inputs)),
		logging.String("mode", mode.String()),
		logging.Int64("dropout_samples", totals.dropoutSamples),
		logging.Int64("recovered_samples", totals.recoveredSamples))

	return nil
}

// loadInputs gathers each contributing source's planes and per-line dropout
// regions for the field.
func (s *Stacker) loadInputs(id fieldsource.FieldID) ([]*stackInput, fieldsource.Descriptor, error) {
	var inputs []*stackInput
	var desc fieldsource.Descriptor

	for i, src := range s.sources {
		if !src.HasField(id) {
			continue
		}
		d, ok := src.Descriptor(id)
		if !ok || !d.Valid() {
			continue
		}
		if len(inputs) == 0 {
			desc = d
		} else if d.Width != desc.Width || d.Height != desc.Height {
			// Geometry mismatch is an alignment defect upstream; skip the
			// source for this field rather than corrupting the output.
			s.logger.Warn("source geometry mismatch, skipping for field",
				logging.String(logging.FieldEventType, "stack_geometry_mismatch"),
				logging.Int(logging.FieldSourceIndex, i),
				logging.Int64(logging.FieldFieldID, int64(id)),
				logging.String(logging.FieldImpact, "field stacked without this source"))
			continue
		}

		in := &stackInput{
			index:   i,
			planes:  make(map[fieldsource.Channel]*fieldsource.Buffer, len(s.planes)),
			regions: make([][]fieldsource.Region, d.Height),
		}
		ok = true
		for ch := range s.planes {
			buf, err := src.Field(id, ch)
			if err != nil {
				ok = false
				break
			}
			in.planes[ch] = buf
		}
		if !ok {
			continue
		}
		for _, r := range src.DropoutHints(id) {
			if r.Line >= 0 && r.Line < d.Height {
				in.regions[r.Line] = append(in.regions[r.Line], r)
			}
		}
		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return nil, fieldsource.Descriptor{}, fmt.Errorf("field %d: %w", id, fieldsource.ErrNoField)
	}
	return inputs, desc, nil
}

// stackPlane combines one channel of the inputs into out, partitioning the
// line range across workers that write disjoint output regions. Remaining
// dropout regions are collected only on the first channel pass; the flags
// are per field, not per channel.
func (s *Stacker) stackPlane(inputs []*stackInput, desc fieldsource.Descriptor, ch fieldsource.Channel, mode Mode, out *fieldsource.Buffer, collectDropouts bool) (workerCounters, []fieldsource.Region) {
	workers := s.cfg.Threads
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > desc.Height {
		workers = desc.Height
	}
	if workers < 1 {
		workers = 1
	}

	counters := make([]workerCounters, workers)
	regions := make([][]fieldsource.Region, workers)

	chunk := (desc.Height + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		from := w * chunk
		to := from + chunk
		if to > desc.Height {
			to = desc.Height
		}
		if from >= to {
			continue
		}
		wg.Add(1)
		go func(w, from, to int) {
			defer wg.Done()
			regions[w] = s.stackLines(inputs, desc, ch, mode, out, from, to, collectDropouts, &counters[w])
		}(w, from, to)
	}
	wg.Wait()

	var total workerCounters
	var remaining []fieldsource.Region
	for w := 0; w < workers; w++ {
		total.add(counters[w])
		remaining = append(remaining, regions[w]...)
	}
	return total, remaining
}

// stackLines combines lines [from, to) of one channel. It is the worker
// body; the line range is exclusive to this worker, so writes to out need no
// synchronization.
func (s *Stacker) stackLines(inputs []*stackInput, desc fieldsource.Descriptor, ch fieldsource.Channel, mode Mode, out *fieldsource.Buffer, from, to int, collectDropouts bool, counters *workerCounters) []fieldsource.Region {
	n := len(inputs)
	values := make([]uint16, 0, n)
	all := make([]uint16, 0, n)
	threshold := s.cfg.threshold16()

	var remaining []fieldsource.Region

	for line := from; line < to; line++ {
		lineOut := out.Line(line)
		runStart := -1

		for sample := 0; sample < desc.Width; sample++ {
			values = values[:0]
			all = all[:0]
			for _, in := range inputs {
				v := in.planes[ch].At(line, sample)
				all = append(all, v)
				if !in.flagged(line, sample) {
					values = append(values, v)
				}
			}

			var v uint16
			dropped := false
			switch {
			case len(values) > 0:
				v = s.combine(inputs, ch, mode, threshold, line, sample, values)
			case s.cfg.Passthrough:
				v = s.combine(inputs, ch, mode, threshold, line, sample, all)
			default:
				counters.dropoutSamples++
				recovered, rv := s.recoverSample(inputs, ch, threshold, line, sample, all)
				if recovered {
					counters.recoveredSamples++
					v = rv
				} else {
					v = medianOf(all)
					dropped = true
				}
			}

			lineOut[sample] = v
			counters.samplesStacked++

			if collectDropouts {
				if dropped && runStart < 0 {
					runStart = sample
				}
				if !dropped && runStart >= 0 {
					remaining = append(remaining, fieldsource.Region{
						Line: line, Start: runStart, End: sample, Basis: fieldsource.BasisCorroborated,
					})
					runStart = -1
				}
			}
		}

		if collectDropouts && runStart >= 0 {
			remaining = append(remaining, fieldsource.Region{
				Line: line, Start: runStart, End: desc.Width, Basis: fieldsource.BasisCorroborated,
			})
		}
	}

	return remaining
}

// combine applies the configured statistic to the gathered values.
func (s *Stacker) combine(inputs []*stackInput, ch fieldsource.Channel, mode Mode, threshold, line, sample int, values []uint16) uint16 {
	switch mode {
	case ModeMean:
		return meanOf(values)
	case ModeMedian:
		return medianOf(values)
	case ModeSmartMean:
		return smartMeanOf(values, threshold)
	case ModeNeighbor:
		if ref, ok := neighborReference(inputs, ch, line, sample); ok {
			return closestTo(values, ref)
		}
		return smartMeanOf(values, threshold)
	case ModeSmartNeighbor:
		if len(values) > 1 && spreadOf(values) > threshold {
			if ref, ok := neighborReference(inputs, ch, line, sample); ok {
				return closestTo(values, ref)
			}
		}
		return smartMeanOf(values, threshold)
	default:
		return smartMeanOf(values, threshold)
	}
}

// recoverSample is the differential dropout recovery path for positions
// flagged in every source. It synthesizes an expected value from the
// unflagged vertical/horizontal neighbor samples and accepts the source
// value closest to it when within twice the smart threshold. Inconclusive
// neighborhoods leave the position flagged.
func (s *Stacker) recoverSample(inputs []*stackInput, ch fieldsource.Channel, threshold, line, sample int, all []uint16) (bool, uint16) {
	if s.cfg.NoDiffDOD {
		return false, 0
	}
	ref, ok := neighborReference(inputs, ch, line, sample)
	if !ok {
		return false, 0
	}
	v := closestTo(all, ref)
	if absInt(int(v)-ref) <= 2*threshold {
		return true, v
	}
	return false, 0
}

// neighborReference estimates the expected value at a position from the
// four vertically/horizontally adjacent positions: per neighbor the median
// of the unflagged source values, then the mean of those medians.
func neighborReference(inputs []*stackInput, ch fieldsource.Channel, line, sample int) (int, bool) {
	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	scratch := make([]uint16, 0, len(inputs))
	var sum, count int
	for _, off := range offsets {
		nl, ns := line+off[0], sample+off[1]
		scratch = scratch[:0]
		for _, in := range inputs {
			buf := in.planes[ch]
			if nl < 0 || nl >= buf.Height || ns < 0 || ns >= buf.Width {
				continue
			}
			if in.flagged(nl, ns) {
				continue
			}
			scratch = append(scratch, buf.At(nl, ns))
		}
		if len(scratch) == 0 {
			continue
		}
		sum += int(medianOf(scratch))
		count++
	}

	if count == 0 {
		return 0, false
	}
	return sum / count, true
}
