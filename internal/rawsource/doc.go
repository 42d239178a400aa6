// Package rawsource loads captures from flat little-endian 16-bit sample
// files described by a TOML sidecar, and writes them back out.
//
// This is deliberately not a TBC container parser: the sidecar carries just
// the geometry the reconstruction layer needs, the sample file is the bare
// field planes back to back, and dropout hints arrive as the compact
// "field line:start-end" text form. Captures load fully into memory, which
// is fine for the CLI's per-capture scope; long archival pipelines feed the
// stages from their own streaming sources instead.
package rawsource
