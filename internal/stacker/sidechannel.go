package stacker

import (
	"fmt"
	"slices"

	"fieldstack/internal/fieldsource"
)

// Audio and EFM are 1-D streams combined with the same mean/median
// vocabulary as the video planes, without neighbor logic. With side-channel
// stacking disabled the best source's stream passes through unchanged.

func (s *Stacker) HasAudio() bool {
	for _, src := range s.sources {
		if src.HasAudio() {
			return true
		}
	}
	return false
}

func (s *Stacker) AudioSampleCount(id fieldsource.FieldID) int {
	samples, err := s.AudioSamples(id)
	if err != nil {
		return 0
	}
	return len(samples)
}

func (s *Stacker) AudioSamples(id fieldsource.FieldID) ([]int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if samples, ok := s.audio.Get(id); ok {
		return samples, nil
	}

	best, ok := s.bestSourceLocked(id)
	if !ok {
		return nil, fmt.Errorf("field %d: %w", id, fieldsource.ErrNoField)
	}

	reference, err := s.sources[best].AudioSamples(id)
	if err != nil {
		return nil, err
	}

	if s.cfg.AudioMode == SideDisabled || len(s.sources) == 1 {
		s.audio.Put(id, reference)
		return reference, nil
	}

	streams := make([][]int16, 0, len(s.sources))
	for _, src := range s.sources {
		if !src.HasField(id) {
			continue
		}
		samples, err := src.AudioSamples(id)
		if err != nil {
			continue
		}
		streams = append(streams, samples)
	}

	out := make([]int16, len(reference))
	scratch := make([]int16, 0, len(streams))
	for i := range reference {
		scratch = scratch[:0]
		for _, stream := range streams {
			if i < len(stream) {
				scratch = append(scratch, stream[i])
			}
		}
		if len(scratch) == 0 {
			out[i] = reference[i]
			continue
		}
		out[i] = combineInt16(scratch, s.cfg.AudioMode)
	}

	s.audio.Put(id, out)
	return out, nil
}

func (s *Stacker) HasEFM() bool {
	for _, src := range s.sources {
		if src.HasEFM() {
			return true
		}
	}
	return false
}

func (s *Stacker) EFMSampleCount(id fieldsource.FieldID) int {
	values, err := s.EFMSamples(id)
	if err != nil {
		return 0
	}
	return len(values)
}

func (s *Stacker) EFMSamples(id fieldsource.FieldID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if values, ok := s.efm.Get(id); ok {
		return values, nil
	}

	best, ok := s.bestSourceLocked(id)
	if !ok {
		return nil, fmt.Errorf("field %d: %w", id, fieldsource.ErrNoField)
	}

	reference, err := s.sources[best].EFMSamples(id)
	if err != nil {
		return nil, err
	}

	if s.cfg.EFMMode == SideDisabled || len(s.sources) == 1 {
		s.efm.Put(id, reference)
		return reference, nil
	}

	streams := make([][]byte, 0, len(s.sources))
	for _, src := range s.sources {
		if !src.HasField(id) {
			continue
		}
		values, err := src.EFMSamples(id)
		if err != nil {
			continue
		}
		streams = append(streams, values)
	}

	out := make([]byte, len(reference))
	scratch := make([]byte, 0, len(streams))
	for i := range reference {
		scratch = scratch[:0]
		for _, stream := range streams {
			if i < len(stream) {
				scratch = append(scratch, stream[i])
			}
		}
		if len(scratch) == 0 {
			out[i] = reference[i]
			continue
		}
		out[i] = combineByte(scratch, s.cfg.EFMMode)
	}

	s.efm.Put(id, out)
	return out, nil
}

func combineInt16(values []int16, mode SideMode) int16 {
	if mode == SideMedian {
		slices.Sort(values)
		n := len(values)
		if n%2 == 0 {
			return values[n/2-1]
		}
		return values[n/2]
	}
	var sum int
	for _, v := range values {
		sum += int(v)
	}
	n := len(values)
	if sum >= 0 {
		return int16((sum + n/2) / n)
	}
	return int16((sum - n/2) / n)
}

func combineByte(values []byte, mode SideMode) byte {
	if mode == SideMedian {
		slices.Sort(values)
		n := len(values)
		if n%2 == 0 {
			return values[n/2-1]
		}
		return values[n/2]
	}
	var sum int
	for _, v := range values {
		sum += int(v)
	}
	n := len(values)
	return byte((sum + n/2) / n)
}
