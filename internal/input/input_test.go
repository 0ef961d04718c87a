package input

import (
	"strings"
	"testing"
)

func TestDecodeJSONSingleObject(t *testing.T) {
	in := `{
		"title": "Team Meeting",
		"event_date": "2025-06-01",
		"event_time": "14:00",
		"timezone": "America/New_York",
		"invitees": ["a@example.com"]
	}`

	events, err := DecodeJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(events) != 1 {
		t.Fatal("expected 1 event, got", len(events))
	}
	ev := events[0]
	if ev.Title != "Team Meeting" {
		t.Error("unexpected title:", ev.Title)
	}
	if ev.EventDate != "2025-06-01" || ev.EventTime != "14:00" {
		t.Errorf("unexpected start: %s %s", ev.EventDate, ev.EventTime)
	}
	if len(ev.Invitees) != 1 || ev.Invitees[0] != "a@example.com" {
		t.Error("unexpected invitees:", ev.Invitees)
	}
}

func TestDecodeJSONArray(t *testing.T) {
	in := `[
		{"title": "One", "event_date": "2025-06-01"},
		{"title": "Two", "event_date": "2025-06-02", "recurrence": "FREQ=DAILY"}
	]`

	events, err := DecodeJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(events) != 2 {
		t.Fatal("expected 2 events, got", len(events))
	}
	if events[1].Recurrence.Rules[0] != "FREQ=DAILY" {
		t.Error("unexpected recurrence:", events[1].Recurrence.Rules)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	in := `{"title": "Typo", "event_dte": "2025-06-01"}`
	if _, err := DecodeJSON(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecodeJSONEmpty(t *testing.T) {
	if _, err := DecodeJSON(strings.NewReader("  \n")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:timed-1@example.com
SUMMARY:Project Review
DESCRIPTION:Quarterly review
LOCATION:Room 4
DTSTART;TZID=Europe/Berlin:20250601T143000
DTEND;TZID=Europe/Berlin:20250601T153000
RRULE:FREQ=WEEKLY;BYDAY=TU
ATTENDEE:mailto:bob@example.com
END:VEVENT
BEGIN:VEVENT
UID:allday-1@example.com
SUMMARY:Company Holiday
DTSTART;VALUE=DATE:20250704
DTEND;VALUE=DATE:20250705
END:VEVENT
END:VCALENDAR
`

func TestDecodeICS(t *testing.T) {
	events, err := DecodeICS(strings.NewReader(sampleICS))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(events) != 2 {
		t.Fatal("expected 2 events, got", len(events))
	}

	timed := events[0]
	if timed.Title != "Project Review" {
		t.Error("unexpected title:", timed.Title)
	}
	if timed.EventDate != "2025-06-01" || timed.EventTime != "14:30:00" {
		t.Errorf("unexpected start: %s %s", timed.EventDate, timed.EventTime)
	}
	if timed.EndDate != "2025-06-01" || timed.EndTime != "15:30:00" {
		t.Errorf("unexpected end: %s %s", timed.EndDate, timed.EndTime)
	}
	if timed.Timezone != "Europe/Berlin" {
		t.Error("unexpected timezone:", timed.Timezone)
	}
	if len(timed.Recurrence.Rules) != 1 || timed.Recurrence.Rules[0] != "FREQ=WEEKLY;BYDAY=TU" {
		t.Error("unexpected recurrence:", timed.Recurrence.Rules)
	}
	if len(timed.Invitees) != 1 || timed.Invitees[0] != "bob@example.com" {
		t.Error("unexpected invitees:", timed.Invitees)
	}

	allDay := events[1]
	if allDay.Title != "Company Holiday" {
		t.Error("unexpected title:", allDay.Title)
	}
	if allDay.EventDate != "2025-07-04" || allDay.EventTime != "" {
		t.Errorf("expected all-day start, got %s %s", allDay.EventDate, allDay.EventTime)
	}
	// The DTEND 20250705 is exclusive: this is a one-day event.
	if allDay.EndDate != "2025-07-04" || allDay.EndTime != "" {
		t.Errorf("expected all-day end, got %s %s", allDay.EndDate, allDay.EndTime)
	}
}

func TestDecodeICSExclusiveAllDayEnd(t *testing.T) {
	const ics = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:one-day@example.com
SUMMARY:One Day
DTSTART;VALUE=DATE:20250704
DTEND;VALUE=DATE:20250705
END:VEVENT
BEGIN:VEVENT
UID:three-day@example.com
SUMMARY:Three Days
DTSTART;VALUE=DATE:20250704
DTEND;VALUE=DATE:20250707
END:VEVENT
BEGIN:VEVENT
UID:zero-span@example.com
SUMMARY:Degenerate
DTSTART;VALUE=DATE:20250704
DTEND;VALUE=DATE:20250704
END:VEVENT
END:VCALENDAR
`
	events, err := DecodeICS(strings.NewReader(ics))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(events) != 3 {
		t.Fatal("expected 3 events, got", len(events))
	}
	if events[0].EndDate != "2025-07-04" {
		t.Errorf("one-day event: end %s, want 2025-07-04", events[0].EndDate)
	}
	if events[1].EndDate != "2025-07-06" {
		t.Errorf("three-day event: end %s, want 2025-07-06", events[1].EndDate)
	}
	// A DTEND equal to DTSTART is out of RFC shape; never step before the start.
	if events[2].EndDate != "2025-07-04" {
		t.Errorf("degenerate event: end %s, want 2025-07-04", events[2].EndDate)
	}
}

func TestDecodeICSUTCDesignator(t *testing.T) {
	const ics = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:utc@example.com
SUMMARY:UTC Call
DTSTART:20250601T140000Z
DTEND:20250601T150000Z
END:VEVENT
END:VCALENDAR
`
	events, err := DecodeICS(strings.NewReader(ics))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	ev := events[0]
	if ev.Timezone != "UTC" {
		t.Errorf("Z-suffixed start should pin the timezone to UTC, got %q", ev.Timezone)
	}
	if ev.EventTime != "14:00:00" || ev.EndTime != "15:00:00" {
		t.Errorf("unexpected times: %s / %s", ev.EventTime, ev.EndTime)
	}
}

func TestDecodeFileByExtension(t *testing.T) {
	events, err := DecodeFile("plan.ics", strings.NewReader(sampleICS))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(events) != 2 {
		t.Fatal("expected 2 events from ics, got", len(events))
	}

	events, err = DecodeFile("plan.json", strings.NewReader(`{"title": "X", "event_date": "2025-01-01"}`))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(events) != 1 || events[0].Title != "X" {
		t.Fatal("unexpected json decode result:", events)
	}
}
