// Package domain models SafeSpot hazard reports.
//
// # Reports
//
// A report is a single user-submitted hazard pin: coordinates, a category
// from a fixed set, a three-level severity, free-text description, an
// anonymity flag, and a creation timestamp. Reports are immutable once
// created; there is no edit or delete operation. The store assigns the ID
// at persistence time, so an unpersisted report has an empty ID.
//
// # Timestamps
//
// Timestamps are milliseconds since the Unix epoch, assigned client-side
// at composition time. Store adapters convert to and from their native
// temporal representation at the boundary; everything inside this module
// sees epoch milliseconds. Snapshots arrive ordered by timestamp
// descending because the store query orders them that way; the
// synchronizer never sorts.
//
// # Categories
//
// Category keys double as lookup keys into the glyph, color, and display
// name tables used for marker rendering. An unrecognized key degrades to
// the fallback glyph and its raw string as the label; it never fails a
// render pass.
//
// # Relative age
//
// [TimeAgo] buckets an age into "Just now" (<1m), minutes (<60m), hours
// (<24h), and days, with floor division in each band. The plural suffix
// appears only when n > 1, matching the original product copy.
package domain
