// Package cronx implements the cron expression engine used by tickd
// schedules.
//
// # Overview
//
// A Grammar describes the accepted field syntax: five ordered fields
// (minute, hour, day-of-month, month, day-of-week) with inclusive numeric
// ranges, optional value names ("jan", "mon", ...), optional value remaps
// (day-of-week 7 -> 0 so both mean Sunday), and a table of aliases such as
// "@hourly". All fields are strict-range: a literal outside the field's
// range is a parse error, never clamped.
//
// Parse validates a raw string against a grammar and returns an immutable
// Expression. ForExpression wraps an Expression in an ExecutionTime that
// answers next/previous/matches queries relative to a caller-supplied
// reference time, in that time's location. Reboot is a null ExecutionTime
// for schedules that fire at process startup instead of on a calendar.
//
// # Day combination rule
//
// Standard cron quirk: when both day-of-month and day-of-week are
// restricted (neither is "*"), a time matches if either field matches.
// When at least one is a wildcard, both must match.
//
// # Concurrency
//
// Grammar and Expression are read-only after construction and safe for
// concurrent use. Queries perform no I/O and never block.
package cronx
