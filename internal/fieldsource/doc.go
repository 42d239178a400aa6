// Package fieldsource defines the read-only field representation contract
// shared by every signal-reconstruction stage.
//
// A Source produces per-field sample buffers, geometry descriptors, dropout
// hints, and optional audio/EFM side channels on demand. Wrapping stages
// (dropout correction, stacking) implement the same interface over their
// inputs, so stages compose transparently: upstream source → corrector →
// stacker → downstream consumer, each layer indistinguishable from a plain
// source to the layer above it.
//
// Sources are immutable once constructed and safe to share across wrappers.
// Buffers returned from accessors are owned by the source (or its cache) and
// must be treated as read-only by callers; Clone before mutating.
package fieldsource
