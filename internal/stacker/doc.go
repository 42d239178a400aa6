// Package stacker implements multi-source field stacking.
//
// A Stacker wraps up to sixteen time-aligned captures of the same material
// and combines them per sample with a configurable statistic (mean, median,
// outlier-trimmed mean, neighbor-guided selection). Samples flagged dropout
// in a source are excluded from the statistic; positions flagged in every
// source go through differential dropout recovery, which synthesizes an
// expected value from nearby known-good samples and accepts the closest
// source value when it is plausible.
//
// Stacking one field partitions its line range across worker goroutines
// writing disjoint regions of the output; everything else is synchronous.
// Results are served from bounded caches behind a single representation
// mutex. A single-source stacker is an exact passthrough.
package stacker
