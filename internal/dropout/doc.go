// Package dropout implements single-source dropout correction.
//
// A Corrector wraps one field source and lazily repairs the sample runs its
// dropout hints mark as damaged, serving repaired fields from a bounded
// per-channel cache. Repairs copy sample data from the best-scoring
// replacement line found within a configurable distance, preferring lines in
// the same field that preserve interlace and chroma phase, falling back to
// the paired field when allowed. Regions with no usable replacement are left
// untouched and surfaced as warnings rather than errors.
//
// The corrected output reports no dropout hints: by definition every known
// dropout has either been repaired or recorded as a warning.
package dropout
