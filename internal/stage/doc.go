// Package stage defines the contract the graph executor needs from each
// transform stage, plus the name-keyed registry stages are published in.
//
// A Stage consumes field sources and produces field sources, so the executor
// can wire stages into a processing graph without knowing what each one
// does. Stages that expose tunable settings additionally implement
// Parameterized; stages that can render a single field on demand implement
// Previewable. Registration uses stable string identifiers so saved projects
// keep resolving to the same stage kind across releases.
package stage
