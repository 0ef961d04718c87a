package normalize

import (
	"strings"
	"testing"
	"time"

	"calassist/internal"
	"calassist/internal/identity"
)

func fixedToday() internal.Date {
	return internal.NewDate(2025, time.June, 17, time.UTC)
}

func testDefaults() Defaults {
	return Defaults{
		Timezone: "America/Toronto",
		Calendar: "primary",
		Today:    fixedToday,
	}
}

func TestNormalizeAllDay(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:     "Vacation",
		EventDate: "2025-06-01",
		EventTime: "  ",
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if !ev.AllDay {
		t.Fatal("blank event_time should mean all-day")
	}
	if ev.StartDate.String() != "2025-06-01" || ev.EndDate.String() != "2025-06-01" {
		t.Fatalf("all-day end date should equal start date, got %s / %s", ev.StartDate, ev.EndDate)
	}
	if ev.Timezone != "" {
		t.Fatalf("all-day events carry no timezone, got %q", ev.Timezone)
	}
	if ev.StartISO() != "2025-06-01" || ev.EndISO() != "2025-06-01" {
		t.Fatalf("unexpected ISO forms: %s / %s", ev.StartISO(), ev.EndISO())
	}
	if len(ev.Notifications) != 0 {
		t.Fatalf("absent notifications must stay empty, got %v", ev.Notifications)
	}
}

func TestNormalizeTimedDefaults(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:     "Sync",
		EventDate: "2025-06-17",
		EventTime: "10",
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if ev.AllDay {
		t.Fatal("event with a time should be timed")
	}
	if ev.StartTime != "10:00:00" {
		t.Fatalf("shorthand hour should normalize, got %q", ev.StartTime)
	}
	if ev.EndTime != "10:45:00" || ev.EndDate.String() != "2025-06-17" {
		t.Fatalf("missing end should default to start + 45m, got %s %s", ev.EndDate, ev.EndTime)
	}
	if ev.Timezone != "America/Toronto" {
		t.Fatalf("missing timezone should use the fallback, got %q", ev.Timezone)
	}
	if len(ev.Notifications) != 0 {
		t.Fatalf("absent notifications must stay empty, got %v", ev.Notifications)
	}
}

func TestNormalizeNotificationsPassThrough(t *testing.T) {
	sent := []internal.Notification{{Method: "popup", Minutes: 30}}
	ev, err := Normalize(internal.EventInput{
		Title:         "Sync",
		EventDate:     "2025-06-17",
		Notifications: sent,
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if len(ev.Notifications) != 1 || ev.Notifications[0] != sent[0] {
		t.Fatalf("notifications must pass through unchanged, got %v", ev.Notifications)
	}
}

func TestNormalizeEndRollsPastMidnight(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:     "Late call",
		EventDate: "2025-06-17",
		EventTime: "23:30",
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if ev.EndDate.String() != "2025-06-18" || ev.EndTime != "00:15:00" {
		t.Fatalf("default end should roll over midnight, got %s %s", ev.EndDate, ev.EndTime)
	}
}

func TestNormalizeMissingDateDefaultsToToday(t *testing.T) {
	ev, err := Normalize(internal.EventInput{Title: "X"}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if ev.StartDate.String() != "2025-06-17" {
		t.Fatalf("missing event_date should default to today, got %s", ev.StartDate)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	cases := []internal.EventInput{
		{EventDate: "06/17/2025"},
		{EventDate: "2025-06-17", EventTime: "25:00"},
		{EventDate: "2025-06-17", EventTime: "10:75"},
		{EventDate: "2025-06-17", EventTime: "ten"},
		{EventDate: "2025-06-17", EndDate: "bad"},
	}
	for _, in := range cases {
		if _, err := Normalize(in, testDefaults()); !internal.IsMalformed(err) {
			t.Errorf("input %+v: expected malformed-input error, got %v", in, err)
		}
	}
}

func TestParseClockForms(t *testing.T) {
	cases := map[string]string{
		"10":       "10:00:00",
		"10:00":    "10:00:00",
		"10:00:30": "10:00:30",
		"noon":     "12:00:00",
		"Midnight": "00:00:00",
		" 9:5 ":    "09:05:00",
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil {
			t.Errorf("ParseClock(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseClock(%q) = %q, want %q", in, got, want)
		}
	}
}

// The key of a minimal all-day event must hash empty notification and
// timezone slots, not the request-time defaults.
func TestNormalizedMinimalEventKey(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:     "Sync",
		EventDate: "2025-06-17",
	}, Defaults{Timezone: "America/Toronto", Calendar: "primary"})
	if err != nil {
		t.Fatal(err)
	}
	const want = "fbf7c968c83933aad5416b34cc009531e38409ac"
	if got := identity.Key(identity.FromEvent(ev)); got != want {
		t.Fatalf("key = %s, want %s", got, want)
	}
}

func TestRecurrenceBareRuleIsPrefixed(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:      "Standup",
		EventDate:  "2025-06-17",
		EventTime:  "09:00",
		Recurrence: internal.Recurrence{Rules: []string{"FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"}},
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if len(ev.Recurrence) != 1 || ev.Recurrence[0] != "RRULE:FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR" {
		t.Fatalf("unexpected recurrence: %v", ev.Recurrence)
	}
}

func TestRecurrencePrefixedRulePassesThrough(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:      "Monthly",
		EventDate:  "2025-06-17",
		Recurrence: internal.Recurrence{Rules: []string{"RRULE:FREQ=MONTHLY;BYMONTHDAY=1"}},
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if len(ev.Recurrence) != 1 || ev.Recurrence[0] != "RRULE:FREQ=MONTHLY;BYMONTHDAY=1" {
		t.Fatalf("unexpected recurrence: %v", ev.Recurrence)
	}
}

func TestRecurrenceSpecCompilation(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:     "Review",
		EventDate: "2025-06-17",
		EventTime: "14:00",
		Recurrence: internal.Recurrence{Spec: &internal.RecurrenceSpec{
			Freq:     "weekly",
			Interval: 2,
			ByDay:    []string{"tu"},
			Until:    "2025-12-31",
		}},
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	want := "RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=TU;UNTIL=20251231T235959Z"
	if len(ev.Recurrence) != 1 || ev.Recurrence[0] != want {
		t.Fatalf("got %v, want %s", ev.Recurrence, want)
	}
}

func TestRecurrenceSpecUntilAllDay(t *testing.T) {
	ev, err := Normalize(internal.EventInput{
		Title:     "Holiday block",
		EventDate: "2025-06-17",
		Recurrence: internal.Recurrence{Spec: &internal.RecurrenceSpec{
			Freq:  "daily",
			Until: "2025-06-20",
		}},
	}, testDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(ev.Recurrence[0], "UNTIL=20250620") {
		t.Fatalf("all-day until should be date-only, got %v", ev.Recurrence)
	}
}

func TestRecurrenceInvalidRule(t *testing.T) {
	_, err := Normalize(internal.EventInput{
		Title:      "Broken",
		EventDate:  "2025-06-17",
		Recurrence: internal.Recurrence{Rules: []string{"FREQ=SOMETIMES"}},
	}, testDefaults())
	if !internal.IsMalformed(err) {
		t.Fatalf("expected malformed-input error, got %v", err)
	}
}
