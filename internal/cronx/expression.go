package cronx

import "time"

// Expression is a parsed, validated five-field cron pattern. Field values
// are stored as bitsets; day-of-week bits are already normalized so Sunday
// is bit 0 regardless of whether the source wrote 0 or 7.
//
// An Expression is immutable: Parse is the only constructor and the only
// validation point.
type Expression struct {
	minute, hour, dom, month, dow uint64

	// Wildcard flags drive the standard dom/dow combination rule.
	domStar, dowStar bool

	text string
}

// Text returns the original input the expression was parsed from.
func (e *Expression) Text() string { return e.text }

// Matches reports whether every field constraint holds for the calendar
// decomposition of t in its own location. Sub-minute components are not
// part of the pattern and are ignored.
func (e *Expression) Matches(t time.Time) bool {
	return bit(e.minute, t.Minute()) &&
		bit(e.hour, t.Hour()) &&
		bit(e.month, int(t.Month())) &&
		e.dayMatches(t)
}

// dayMatches applies the cron day rule: OR when both day fields are
// restricted, AND otherwise.
func (e *Expression) dayMatches(t time.Time) bool {
	domOK := bit(e.dom, t.Day())
	dowOK := bit(e.dow, int(t.Weekday())) // time.Sunday == 0, matching our numbering
	if e.domStar || e.dowStar {
		return domOK && dowOK
	}
	return domOK || dowOK
}

func bit(set uint64, v int) bool {
	if v < 0 || v > 63 {
		return false
	}
	return set&(1<<uint(v)) != 0
}
