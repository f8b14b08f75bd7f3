// Package model provides the schema-driven active record layer.
//
// A Definition describes one entity type: table, primary key, declared
// column kinds, validators and the timestamp storage zone. An Instance binds
// a Record to a Definition and tracks its persistence lifecycle. A
// Repository loads, counts and removes rows for one Definition and produces
// entity values wrapping Instances.
//
// # Lifecycle
//
//   - New / Build: dirty, not from the database; Save inserts
//   - Find / Select / Restore: clean, from the database; Save updates
//   - Set marks the instance dirty and drops the cached validation result
//   - Setting the primary key always clears from-database, so the next
//     Save inserts (save-as-copy)
//   - Remove deletes the row but leaves the Instance untouched
//
// # Errors
//
// Validation failures are data: Errors returns them and IsValid summarizes
// them; neither returns a Go error for an invalid record. Persistence
// failures (bad definitions, unsupported conversions, unexpected affected
// row counts, missing insert ids, unknown backends) are returned as *Error.
//
// # Timestamps
//
// Timestamps are normalized to the Definition's zone (UTC, or a local zone
// with WithLocalTime) on Set, stored as zone-naive wall clock text, and
// reinterpreted in the same zone when rows are read back. Only the instant
// survives a round trip, at one-second precision.
package model
