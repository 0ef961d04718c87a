// Package input decodes event requests from JSON and ICS files into
// the shapes the normalizer understands.
package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	ics "github.com/arran4/golang-ical"

	"calassist/internal"
)

// DecodeJSON reads either a single event object or an array of them.
// Unknown fields are rejected so typos in field names surface as errors
// instead of silently dropping data.
func DecodeJSON(r io.Reader) ([]internal.EventInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	if trimmed[0] == '[' {
		var events []internal.EventInput
		if err := strictUnmarshal(trimmed, &events); err != nil {
			return nil, err
		}
		return events, nil
	}

	var ev internal.EventInput
	if err := strictUnmarshal(trimmed, &ev); err != nil {
		return nil, err
	}
	return []internal.EventInput{ev}, nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}
	return nil
}

// DecodeICS reads VEVENTs from an iCalendar payload. Each event is
// mapped onto the same request shape JSON input uses, so both sources
// go through one normalization path.
func DecodeICS(r io.Reader) ([]internal.EventInput, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing ics: %w", err)
	}

	var events []internal.EventInput
	for _, ve := range cal.Events() {
		ev, err := fromVEvent(ve)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func fromVEvent(ve *ics.VEvent) (internal.EventInput, error) {
	var ev internal.EventInput

	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}

	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, fmt.Errorf("vevent %q: missing DTSTART", ev.Title)
	}

	allDay := isDateValue(dtStart)
	var startUTC bool
	ev.EventDate, ev.EventTime, startUTC = splitICSTime(dtStart.Value, allDay)
	if tz := tzidOf(dtStart); tz != "" {
		ev.Timezone = tz
	} else if startUTC && !allDay {
		ev.Timezone = "UTC"
	}

	if dtEnd := ve.GetProperty(ics.ComponentPropertyDtEnd); dtEnd != nil {
		endAllDay := isDateValue(dtEnd)
		endDate, endTime, _ := splitICSTime(dtEnd.Value, endAllDay)
		if endAllDay {
			// A DATE-valued DTEND is exclusive; the request model wants
			// the last day the event covers.
			endDate = inclusiveEndDate(endDate, ev.EventDate)
		}
		ev.EndDate = endDate
		ev.EndTime = endTime
	}

	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil && p.Value != "" {
		ev.Recurrence = internal.Recurrence{Rules: []string{p.Value}}
	}

	for _, att := range ve.Attendees() {
		addr := strings.TrimPrefix(att.Value, "mailto:")
		if addr != "" {
			ev.Invitees = append(ev.Invitees, addr)
		}
	}

	return ev, nil
}

// isDateValue reports whether a DTSTART/DTEND property carries a bare
// date, either via VALUE=DATE or by lacking a time component.
func isDateValue(p *ics.IANAProperty) bool {
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// splitICSTime converts 20250601 or 20250601T143000[Z] into the
// date/time text pair used by event requests; utc reports a trailing Z.
func splitICSTime(v string, allDay bool) (date, clock string, utc bool) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "Z") {
		v = strings.TrimSuffix(v, "Z")
		utc = true
	}
	datePart := v
	if i := strings.IndexByte(v, 'T'); i >= 0 {
		datePart = v[:i]
		if !allDay {
			clock = v[i+1:]
		}
	}
	if len(datePart) == 8 {
		date = datePart[:4] + "-" + datePart[4:6] + "-" + datePart[6:8]
	} else {
		date = datePart
	}
	if len(clock) == 6 {
		clock = clock[:2] + ":" + clock[2:4] + ":" + clock[4:6]
	}
	return date, clock, utc
}

// inclusiveEndDate steps an exclusive end date back one day, never moving
// it before the start.
func inclusiveEndDate(end, start string) string {
	d, err := internal.ParseDate(end)
	if err != nil {
		return end
	}
	prev := d.AddDate(0, 0, -1)
	if s, err := internal.ParseDate(start); err == nil && prev.Before(s.Time) {
		return start
	}
	return prev.String()
}

func tzidOf(p *ics.IANAProperty) string {
	if params := p.ICalParameters; params != nil {
		if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
			return tzs[0]
		}
	}
	return ""
}

// DecodeFile picks the decoder from the file extension. Anything that
// is not .ics is treated as JSON.
func DecodeFile(name string, r io.Reader) ([]internal.EventInput, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ics", ".ical", ".icalendar":
		return DecodeICS(r)
	default:
		return DecodeJSON(r)
	}
}
