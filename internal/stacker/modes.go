package stacker

import "slices"

// Combination statistics over the small per-position value sets (at most
// MaxSources entries). Inputs are scratch slices owned by the calling
// worker; medianOf sorts in place.

// meanOf returns the rounded arithmetic mean. Callers never pass an empty
// slice.
func meanOf(values []uint16) uint16 {
	var sum int
	for _, v := range values {
		sum += int(v)
	}
	n := len(values)
	return uint16((sum + n/2) / n)
}

// medianOf returns the middle value by sorted order. Even counts resolve to
// the lower of the two middle values, keeping the result an observed sample
// rather than an interpolation.
func medianOf(values []uint16) uint16 {
	slices.Sort(values)
	n := len(values)
	if n%2 == 0 {
		return values[n/2-1]
	}
	return values[n/2]
}

// smartMeanOf returns the mean of the subset of values within threshold of
// the median, trimming outliers contributed by a single degraded source.
// The subset always contains at least the median itself.
func smartMeanOf(values []uint16, threshold int) uint16 {
	if len(values) == 1 {
		return values[0]
	}
	sorted := slices.Clone(values)
	mid := int(medianOf(sorted))

	var sum, count int
	for _, v := range values {
		if absInt(int(v)-mid) <= threshold {
			sum += int(v)
			count++
		}
	}
	if count == 0 {
		return uint16(mid)
	}
	return uint16((sum + count/2) / count)
}

// spreadOf returns max-min of the values.
func spreadOf(values []uint16) int {
	lo, hi := int(values[0]), int(values[0])
	for _, v := range values[1:] {
		if int(v) < lo {
			lo = int(v)
		}
		if int(v) > hi {
			hi = int(v)
		}
	}
	return hi - lo
}

// closestTo returns the value nearest the reference, ties to the earlier
// (lower-indexed source) value.
func closestTo(values []uint16, reference int) uint16 {
	best := values[0]
	bestDist := absInt(int(values[0]) - reference)
	for _, v := range values[1:] {
		if d := absInt(int(v) - reference); d < bestDist {
			best = v
			bestDist = d
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
