// Package pipeline defines shared utilities consumed by the stage adapters
// and the CLI drivers.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration problems (fatal to the invocation) versus source
//     problems (absorbed and reported as warnings).
//   - Context helpers that stamp stage names and run identifiers for logging
//     and the report store.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package pipeline
