package cronx

import (
	"testing"
	"time"
)

func execTime(t *testing.T, spec string) ExecutionTime {
	t.Helper()
	return ForExpression(mustParse(t, spec))
}

func TestNext(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		spec  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "every minute rounds up",
			spec:  "* * * * *",
			after: time.Date(2025, 3, 10, 12, 30, 30, 0, time.UTC),
			want:  time.Date(2025, 3, 10, 12, 31, 0, 0, time.UTC),
		},
		{
			name:  "exact match is strictly after",
			spec:  "0 12 * * *",
			after: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "monday morning from midweek",
			spec:  "0 9 * * 1",
			after: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "monthly mid-month",
			spec:  "30 8 15 * *",
			after: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 4, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:  "leap day waits for leap year",
			spec:  "0 0 29 2 *",
			after: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dom or dow picks nearer monday",
			spec:  "0 0 1 * 1",
			after: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dom or dow picks first of month",
			spec:  "0 0 1 * 3",
			after: time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dom and dow coincide",
			spec:  "0 0 1 * 1",
			after: time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// a stepped wildcard dom is still a wildcard, so dow stays
			// an AND constraint rather than flipping to the OR rule
			name:  "stepped wildcard dom keeps dow restrictive",
			spec:  "0 0 */1 * 1",
			after: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := execTime(t, tt.spec).Next(tt.after)
			if !ok {
				t.Fatalf("Next(%v) found nothing", tt.after)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Next(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

func TestPrevious(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		spec   string
		before time.Time
		want   time.Time
	}{
		{
			name:   "every minute rounds down",
			spec:   "* * * * *",
			before: time.Date(2025, 3, 10, 12, 30, 30, 0, time.UTC),
			want:   time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC),
		},
		{
			name:   "exact match is strictly before",
			spec:   "0 12 * * *",
			before: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			want:   time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "monday morning from midweek",
			spec:   "0 9 * * 1",
			before: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
			want:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly crosses month boundary",
			spec:   "30 8 15 * *",
			before: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2025, 2, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:   "leap day looks back to leap year",
			spec:   "0 0 29 2 *",
			before: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year boundary",
			spec:   "0 0 1 1 *",
			before: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, ok := execTime(t, tt.spec).Previous(tt.before)
			if !ok {
				t.Fatalf("Previous(%v) found nothing", tt.before)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Previous(%v) = %v, want %v", tt.before, got, tt.want)
			}
		})
	}
}

func TestNextPreviousProperties(t *testing.T) {
	t.Parallel()
	specs := []string{
		"* * * * *",
		"*/5 * * * *",
		"0 9 * * 1",
		"30 8 15 * *",
		"15,45 9-17 * * 1-5",
		"@daily",
	}
	refs := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 13, 37, 42, 12345, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for _, spec := range specs {
		et := execTime(t, spec)
		for _, ref := range refs {
			next, ok := et.Next(ref)
			if !ok {
				t.Fatalf("%s: Next(%v) found nothing", spec, ref)
			}
			if !next.After(ref) {
				t.Errorf("%s: Next(%v) = %v is not strictly after", spec, ref, next)
			}
			if !et.Matches(next) {
				t.Errorf("%s: Next(%v) = %v does not match its own pattern", spec, ref, next)
			}
			// The occurrence itself is the latest one before any instant
			// just past it.
			back, ok := et.Previous(next.Add(time.Minute))
			if !ok || !back.Equal(next) {
				t.Errorf("%s: Previous(next+1m) = %v (ok=%v), want %v", spec, back, ok, next)
			}
			prev, ok := et.Previous(next)
			if !ok {
				t.Fatalf("%s: Previous(%v) found nothing", spec, next)
			}
			if !prev.Before(next) {
				t.Errorf("%s: Previous(%v) = %v is not strictly before", spec, next, prev)
			}
			if !et.Matches(prev) {
				t.Errorf("%s: Previous(%v) = %v does not match its own pattern", spec, next, prev)
			}
		}
	}
}

func TestNextKeepsLocation(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	after := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	got, ok := execTime(t, "30 14 * * *").Next(after)
	if !ok {
		t.Fatal("Next found nothing")
	}
	if got.Location() != loc {
		t.Fatalf("result location = %v, want %v", got.Location(), loc)
	}
	if got.Hour() != 14 || got.Minute() != 30 || got.Day() != 10 {
		t.Fatalf("unexpected wall clock: %v", got)
	}
}

func TestNextAcrossSpringForward(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2025-03-09: 02:00 EST jumps to 03:00 EDT.
	after := time.Date(2025, 3, 9, 1, 0, 0, 0, loc)
	got, ok := execTime(t, "0 0 * * *").Next(after)
	if !ok {
		t.Fatal("Next found nothing")
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNoOccurrenceWithinHorizon(t *testing.T) {
	t.Parallel()
	et := execTime(t, "0 0 31 2 *")
	ref := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, ok := et.Next(ref); ok {
		t.Error("Next found an occurrence for February 31st")
	}
	if _, ok := et.Previous(ref); ok {
		t.Error("Previous found an occurrence for February 31st")
	}
}

func TestRebootHasNoCalendar(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, ok := Reboot.Next(now); ok {
		t.Error("reboot strategy reported a next execution")
	}
	if _, ok := Reboot.Previous(now); ok {
		t.Error("reboot strategy reported a previous execution")
	}
	if Reboot.Matches(now) {
		t.Error("reboot strategy matched an instant")
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()
	e := mustParse(t, "30 9 * * 1-5")
	monday := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	saturday := time.Date(2025, 3, 8, 9, 30, 0, 0, time.UTC)
	if !e.Matches(monday) {
		t.Error("weekday 09:30 should match")
	}
	if e.Matches(saturday) {
		t.Error("saturday should not match")
	}
	if e.Matches(monday.Add(time.Minute)) {
		t.Error("09:31 should not match")
	}
}
