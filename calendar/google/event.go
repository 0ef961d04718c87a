package google

import (
	"google.golang.org/api/calendar/v3"

	"calassist/internal"
)

const descriptionNotice = "Created automatically by calassist"

// Reminder overrides used when a request carries no notifications of its
// own. Timed and all-day events get different lists because all-day
// reminders fire relative to midnight. Applied only here, so the identity
// key upstream always hashes the caller's raw notifications.
var (
	timedReminderDefaults = []*calendar.EventReminder{
		{Method: "email", Minutes: 24 * 60},
		{Method: "popup", Minutes: 7 * 24 * 60},
		{Method: "popup", Minutes: 2 * 60},
		{Method: "popup", Minutes: 24 * 60},
		{Method: "popup", Minutes: 2 * 24 * 60},
	}
	allDayReminderDefaults = []*calendar.EventReminder{
		{Method: "popup", Minutes: 7 * 24 * 60},
		{Method: "email", Minutes: 24 * 60},
		{Method: "popup", Minutes: 24 * 60},
		{Method: "popup", Minutes: 2 * 24 * 60},
		{Method: "popup", Minutes: 3 * 24 * 60},
	}

	// Calendar-level defaults patched onto newly created calendars.
	calendarReminderDefaults = []*calendar.EventReminder{
		{Method: "popup", Minutes: 10},
	}
)

// eventBody builds the request payload for inserts and patches. The
// identity key rides along as a private extended property so later runs
// can find the event again.
func eventBody(ev *internal.CanonicalEvent, key string) *calendar.Event {
	gevent := &calendar.Event{
		Summary:     ev.Title,
		Description: withNotice(ev.Description),
		Location:    ev.Location,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				keyProperty: key,
			},
		},
	}

	if ev.AllDay {
		// The wire format wants an exclusive end date: a one-day event
		// on June 1 ends on June 2.
		gevent.Start = &calendar.EventDateTime{Date: ev.StartDate.String()}
		gevent.End = &calendar.EventDateTime{Date: ev.EndDate.AddDate(0, 0, 1).String()}
	} else {
		gevent.Start = &calendar.EventDateTime{
			DateTime: ev.StartDate.String() + "T" + ev.StartTime,
			TimeZone: ev.Timezone,
		}
		gevent.End = &calendar.EventDateTime{
			DateTime: ev.EndDate.String() + "T" + ev.EndTime,
			TimeZone: ev.Timezone,
		}
	}

	gevent.Reminders = &calendar.EventReminders{
		UseDefault:      false,
		Overrides:       reminderOverrides(ev),
		ForceSendFields: []string{"UseDefault"},
	}

	for _, addr := range ev.Invitees {
		gevent.Attendees = append(gevent.Attendees, &calendar.EventAttendee{Email: addr})
	}

	gevent.Recurrence = ev.Recurrence

	return gevent
}

func reminderOverrides(ev *internal.CanonicalEvent) []*calendar.EventReminder {
	if len(ev.Notifications) == 0 {
		if ev.AllDay {
			return allDayReminderDefaults
		}
		return timedReminderDefaults
	}
	overrides := make([]*calendar.EventReminder, len(ev.Notifications))
	for i, n := range ev.Notifications {
		overrides[i] = &calendar.EventReminder{
			Method:  n.Method,
			Minutes: n.Minutes,
		}
	}
	return overrides
}

func withNotice(description string) string {
	if description == "" {
		return descriptionNotice
	}
	return description + "\n\n" + descriptionNotice
}

func fromGoogle(event *calendar.Event) *internal.RemoteEvent {
	res := &internal.RemoteEvent{
		ID:        event.Id,
		GlobalUID: event.ICalUID,
		Link:      event.HtmlLink,
		Summary:   event.Summary,
		Status:    event.Status,
	}
	if event.Start != nil {
		res.Start = eventTime(event.Start)
	}
	if event.End != nil {
		res.End = eventTime(event.End)
	}
	return res
}

func eventTime(dt *calendar.EventDateTime) string {
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}
