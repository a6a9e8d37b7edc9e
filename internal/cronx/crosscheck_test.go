package cronx

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

// The forward walk should agree with the widely deployed robfig parser on
// every expression both engines accept. Iterating Next also exercises the
// month/day/hour wrap paths far more densely than hand-picked cases.
func TestNextAgreesWithRobfig(t *testing.T) {
	t.Parallel()
	specs := []string{
		"* * * * *",
		"*/5 * * * *",
		"0 * * * *",
		"0 9 * * 1",
		"30 8 15 * *",
		"0 0 29 2 *",
		"15,45 9-17 * * 1-5",
		"0 12 1 */2 *",
		"0 0 1 * 1",
		"0 0 */2 * 1",
		"5 4 * * sun",
		"@daily",
		"@hourly",
		"@monthly",
		"@yearly",
	}
	starts := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 13, 37, 42, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 58, 0, 0, time.UTC),
	}

	for _, spec := range specs {
		spec := spec
		t.Run(spec, func(t *testing.T) {
			t.Parallel()
			ours := execTime(t, spec)
			oracle, err := cron.ParseStandard(spec)
			if err != nil {
				t.Fatalf("oracle rejects %q: %v", spec, err)
			}
			for _, start := range starts {
				mine, theirs := start, start
				for i := 0; i < 24; i++ {
					got, ok := ours.Next(mine)
					want := oracle.Next(theirs)
					// Both engines bound the search; iterating a leap-day
					// pattern eventually crosses the 2100 gap where both
					// must report none (zero time for the oracle).
					if !ok {
						if !want.IsZero() {
							t.Fatalf("step %d from %v: found nothing, oracle says %v", i, start, want)
						}
						break
					}
					if want.IsZero() {
						t.Fatalf("step %d from %v: got %v, oracle found nothing", i, start, got)
					}
					if !got.Equal(want) {
						t.Fatalf("step %d from %v: got %v, oracle says %v", i, start, got, want)
					}
					mine, theirs = got, want
				}
			}
		})
	}
}
