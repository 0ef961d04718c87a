// Package normalize turns loosely typed event inputs into canonical,
// fully-specified events. All defaulting happens here and nowhere else, so
// that key generation sees identical values at creation time and at lookup
// time.
package normalize

import (
	"strings"
	"time"

	"calassist/internal"
)

// defaultTimedDuration is used when a timed event has no explicit end time.
const defaultTimedDuration = 45 * time.Minute

// Defaults supplies the fallback values the normalizer needs. The zero value
// works: Timezone falls back to UTC, Calendar to "primary" and Today to the
// system clock.
type Defaults struct {
	Timezone string
	Calendar string
	Today    func() internal.Date
}

func (d Defaults) timezone() string {
	if d.Timezone == "" {
		return "UTC"
	}
	return d.Timezone
}

func (d Defaults) calendar() string {
	if d.Calendar == "" {
		return "primary"
	}
	return d.Calendar
}

func (d Defaults) today() internal.Date {
	if d.Today != nil {
		return d.Today()
	}
	return internal.Today()
}

// Normalize resolves an EventInput into a CanonicalEvent. It only fails on
// explicit date/time/recurrence strings that cannot be parsed; every absent
// field is defaulted.
func Normalize(in internal.EventInput, d Defaults) (*internal.CanonicalEvent, error) {
	ev := &internal.CanonicalEvent{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    in.Location,
		Calendar:    d.calendar(),
		Invitees:    in.Invitees,
	}
	if in.Calendar != "" {
		ev.Calendar = in.Calendar
	}
	if ev.Title == "" {
		ev.Title = "Untitled Event"
	}

	// All-day vs timed is decided solely by the presence of a start time.
	ev.AllDay = strings.TrimSpace(in.EventTime) == ""

	startDate := d.today()
	if in.EventDate != "" {
		parsed, err := internal.ParseDate(in.EventDate)
		if err != nil {
			return nil, &internal.MalformedInputError{Field: "event_date", Value: in.EventDate, Reason: "want YYYY-MM-DD"}
		}
		startDate = parsed
	}
	ev.StartDate = startDate

	endDate := startDate
	if in.EndDate != "" {
		parsed, err := internal.ParseDate(in.EndDate)
		if err != nil {
			return nil, &internal.MalformedInputError{Field: "end_date", Value: in.EndDate, Reason: "want YYYY-MM-DD"}
		}
		endDate = parsed
	}
	ev.EndDate = endDate

	if !ev.AllDay {
		startTime, err := ParseClock(in.EventTime)
		if err != nil {
			return nil, err
		}
		ev.StartTime = startTime

		if strings.TrimSpace(in.EndTime) != "" {
			endTime, err := ParseClock(in.EndTime)
			if err != nil {
				return nil, err
			}
			ev.EndTime = endTime
		} else if in.EndDate != "" {
			// An explicit end date with no end time keeps the start's
			// clock time.
			ev.EndTime = startTime
		} else {
			// No end at all: start plus a fixed short duration, rolling
			// the date when it crosses midnight.
			endDate, endTime := addClock(ev.StartDate, startTime, defaultTimedDuration)
			ev.EndDate = endDate
			ev.EndTime = endTime
		}

		ev.Timezone = in.Timezone
		if ev.Timezone == "" {
			ev.Timezone = d.timezone()
		}
	}

	// Notifications stay exactly as the caller sent them, empty included.
	// The identity key hashes this raw value; the reminder defaults for
	// absent notifications are request-body policy, applied at the
	// provider boundary.
	ev.Notifications = in.Notifications

	rules, err := compileRecurrence(in.Recurrence, ev.AllDay)
	if err != nil {
		return nil, err
	}
	ev.Recurrence = rules

	return ev, nil
}

// addClock adds a duration to a date + "HH:MM:SS" pair.
func addClock(d internal.Date, clock string, dur time.Duration) (internal.Date, string) {
	t, _ := time.Parse("15:04:05", clock)
	at := time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	at = at.Add(dur)
	return internal.NewDateFromTime(at), at.Format("15:04:05")
}
