// Package runner fires due schedules.
//
// A polling loop wakes at a fixed interval, asks each registered schedule
// for its next execution time, and enqueues runs that have come due onto a
// bounded queue drained by a small worker pool. Reboot schedules fire once
// when the service starts.
//
// Start/Stop are safe to toggle repeatedly; a Start that races an
// in-progress Stop waits for the old worker pool to drain before creating
// a new one.
package runner
