package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tickd/internal/cronx"
)

func TestNewCronSchedule(t *testing.T) {
	t.Parallel()
	s, err := New("nightly", "0 3 * * *")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.ID() != "nightly" {
		t.Fatalf("ID = %q", s.ID())
	}
	if s.Time() != "0 3 * * *" {
		t.Fatalf("Time = %q", s.Time())
	}
	if s.ShouldRunOnReboot() {
		t.Fatal("calendar schedule should not run on reboot")
	}

	ref := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next, ok := s.ExecutionTime().Next(ref)
	if !ok {
		t.Fatal("Next found nothing")
	}
	want := time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}
}

func TestNewRebootSchedule(t *testing.T) {
	t.Parallel()
	s, err := New("startup", "@reboot", WithRebootSupport())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !s.ShouldRunOnReboot() {
		t.Fatal("reboot marker should set the reboot flag")
	}
	if _, ok := s.NextExecution(); ok {
		t.Fatal("reboot schedule must not report a next execution")
	}
	if _, ok := s.LastExecution(); ok {
		t.Fatal("reboot schedule must not report a last execution")
	}
}

func TestRebootMarkerIsTrimmedAndCaseInsensitive(t *testing.T) {
	t.Parallel()
	s, err := New("startup", "  @Reboot ", WithRebootSupport())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if !s.ShouldRunOnReboot() {
		t.Fatal("marker should match after trim and case fold")
	}
}

func TestRebootMarkerRejectedWithoutSupport(t *testing.T) {
	t.Parallel()
	_, err := New("startup", "@reboot")
	if err == nil {
		t.Fatal("reboot marker should fail for families without support")
	}
	var pe *cronx.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error chain misses *cronx.ParseError: %v", err)
	}
}

func TestNewInvalidTimeWrapsParseError(t *testing.T) {
	t.Parallel()
	raw := "61 * * * *"
	_, err := New("broken", raw)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "broken") || !strings.Contains(err.Error(), raw) {
		t.Fatalf("error %q should name the schedule and the raw time", err)
	}
	var pe *cronx.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error chain misses *cronx.ParseError: %v", err)
	}
}
