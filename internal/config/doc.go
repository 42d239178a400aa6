// Package config loads, defaults, normalizes, and validates the TOML
// configuration consumed by the CLI drivers.
//
// Load applies three passes in order: repository defaults, the user's file,
// then Normalize (path expansion, memory-derived cache sizing) and Validate.
// Stage code never reads this package directly; the CLI translates the
// relevant sections into the typed stage configs.
package config
