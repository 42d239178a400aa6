// Package fieldcache provides the fixed-capacity LRU memoization primitive
// the signal-reconstruction wrappers use to keep memory bounded over
// captures of hundreds of thousands of fields.
//
// Entries are immutable once inserted: a field is either absent or fully
// computed, never partial. Capacity is fixed at construction and eviction is
// strict least-recently-used, so the worst case under pressure is a reduced
// hit rate, never unbounded growth.
package fieldcache
