package cronx

import "time"

// ExecutionTime answers when a schedule fires relative to a reference
// instant. All calculations happen in the reference instant's location;
// the engine never assumes a fixed zone. Results are whole minutes, the
// resolution of a five-field expression.
type ExecutionTime interface {
	// Next returns the earliest matching instant strictly after the
	// reference, or false if none exists within the search horizon.
	Next(after time.Time) (time.Time, bool)

	// Previous returns the latest matching instant strictly before the
	// reference, or false if none exists within the search horizon.
	Previous(before time.Time) (time.Time, bool)

	// Matches reports whether the instant itself satisfies the schedule.
	Matches(t time.Time) bool
}

// ForExpression wraps a parsed expression in the calendar-walking
// calculator.
func ForExpression(e *Expression) ExecutionTime { return &cronTime{expr: e} }

// Reboot is the null ExecutionTime for schedules that fire once at process
// startup instead of on a calendar pattern: it has no next or previous
// execution and matches no instant. The startup firing itself is the
// runner's job, keyed off the schedule's reboot flag.
var Reboot ExecutionTime = rebootTime{}

type rebootTime struct{}

func (rebootTime) Next(time.Time) (time.Time, bool)     { return time.Time{}, false }
func (rebootTime) Previous(time.Time) (time.Time, bool) { return time.Time{}, false }
func (rebootTime) Matches(time.Time) bool               { return false }

// searchHorizonYears bounds the Next/Previous walks. Any valid five-field
// pattern recurs well within this window; the limit only guards against a
// runaway walk.
const searchHorizonYears = 5

type cronTime struct {
	expr *Expression
}

func (c *cronTime) Matches(t time.Time) bool { return c.expr.Matches(t) }

// Next walks the candidate forward one calendar field at a time: find an
// acceptable month, then day, hour, minute. Whenever a field is bumped the
// lower fields reset to their minimum, and a wrap into a higher field
// restarts the walk so every field is re-verified.
func (c *cronTime) Next(after time.Time) (time.Time, bool) {
	e := c.expr
	loc := after.Location()

	// Round up to the next whole minute, strictly after the reference.
	t := after.Add(time.Minute - time.Duration(after.Second())*time.Second - time.Duration(after.Nanosecond()))

	added := false
	yearLimit := t.Year() + searchHorizonYears

WRAP:
	if t.Year() > yearLimit {
		return time.Time{}, false
	}

	for !bit(e.month, int(t.Month())) {
		if !added {
			added = true
			t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		}
		t = t.AddDate(0, 1, 0)
		if t.Month() == time.January {
			goto WRAP
		}
	}

	for !e.dayMatches(t) {
		if !added {
			added = true
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		}
		t = t.AddDate(0, 0, 1)
		// Where a DST transition removes midnight the walk lands
		// off-midnight; pin it back.
		if t.Hour() != 0 {
			if t.Hour() > 12 {
				t = t.Add(time.Duration(24-t.Hour()) * time.Hour)
			} else {
				t = t.Add(-time.Duration(t.Hour()) * time.Hour)
			}
		}
		if t.Day() == 1 {
			goto WRAP
		}
	}

	for !bit(e.hour, t.Hour()) {
		if !added {
			added = true
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
		}
		t = t.Add(time.Hour)
		if t.Hour() == 0 {
			goto WRAP
		}
	}

	for !bit(e.minute, t.Minute()) {
		if !added {
			added = true
			t = t.Truncate(time.Minute)
		}
		t = t.Add(time.Minute)
		if t.Minute() == 0 {
			goto WRAP
		}
	}

	return t, true
}

// Previous mirrors Next: walk backward, resetting lower fields to their
// maximum when a field is decremented.
func (c *cronTime) Previous(before time.Time) (time.Time, bool) {
	e := c.expr
	loc := before.Location()

	// Round down to a whole minute strictly before the reference.
	t := before.Add(-time.Duration(before.Second())*time.Second - time.Duration(before.Nanosecond()))
	if !t.Before(before) {
		t = t.Add(-time.Minute)
	}

	subbed := false
	yearLimit := t.Year() - searchHorizonYears

WRAP:
	if t.Year() < yearLimit {
		return time.Time{}, false
	}

	for !bit(e.month, int(t.Month())) {
		subbed = true
		// Final minute of the previous month; the jump resets the
		// lower fields in one step.
		t = fixEndOfDay(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc).Add(-time.Minute))
		if t.Month() == time.December {
			goto WRAP
		}
	}

	for !e.dayMatches(t) {
		if !subbed {
			subbed = true
			t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, loc)
		}
		m := t.Month()
		t = fixEndOfDay(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).Add(-time.Minute))
		if t.Month() != m {
			goto WRAP
		}
	}

	for !bit(e.hour, t.Hour()) {
		if !subbed {
			subbed = true
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 59, 0, 0, loc)
		}
		t = t.Add(-time.Hour)
		if t.Hour() == 23 {
			goto WRAP
		}
	}

	for !bit(e.minute, t.Minute()) {
		if !subbed {
			subbed = true
			t = t.Truncate(time.Minute)
		}
		t = t.Add(-time.Minute)
		if t.Minute() == 59 {
			goto WRAP
		}
	}

	return t, true
}

// fixEndOfDay pins a candidate that should sit on a 23:59 wall clock but
// was displaced by a DST transition around midnight.
func fixEndOfDay(t time.Time) time.Time {
	switch {
	case t.Hour() == 23:
		return t
	case t.Hour() < 12:
		return t.Add(-time.Duration(t.Hour()+1) * time.Hour)
	default:
		return t.Add(time.Duration(23-t.Hour()) * time.Hour)
	}
}
