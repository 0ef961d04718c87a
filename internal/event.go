package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventInput is the loosely typed record supplied by callers (pasted JSON,
// uploaded files, interactive forms). Every field is optional; Normalize is
// the single place where defaults are filled and shapes are rejected.
type EventInput struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	EventDate     string         `json:"event_date"`
	EventTime     string         `json:"event_time"`
	EndDate       string         `json:"end_date"`
	EndTime       string         `json:"end_time"`
	Timezone      string         `json:"timezone"`
	Notifications []Notification `json:"notifications"`
	Invitees      []string       `json:"invitees"`
	Recurrence    Recurrence     `json:"recurrence"`
	Calendar      string         `json:"calendar"`
}

// Notification is a single reminder: how to notify and how many minutes
// before the event start.
type Notification struct {
	Method  string `json:"method"`
	Minutes int64  `json:"minutes"`
}

// Recurrence accepts the shapes callers actually send: nothing, a bare rule
// body, a full RRULE string, a list of rule strings, or a structured object.
// Exactly one of Rules/Spec is set after unmarshalling.
type Recurrence struct {
	Rules []string
	Spec  *RecurrenceSpec
}

// RecurrenceSpec is the structured recurrence form. Present parts are
// compiled into one RRULE string by the normalizer.
type RecurrenceSpec struct {
	Freq       string   `json:"freq"`
	Interval   int      `json:"interval"`
	ByDay      []string `json:"byDay"`
	ByMonth    []int    `json:"byMonth"`
	ByMonthDay []int    `json:"byMonthDay"`
	BySetPos   []int    `json:"bySetPos"`
	Count      int      `json:"count"`
	Until      string   `json:"until"`
}

func (r Recurrence) IsZero() bool {
	return len(r.Rules) == 0 && r.Spec == nil
}

func (r *Recurrence) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || trimmed == `""` {
		*r = Recurrence{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "" {
			r.Rules = []string{s}
		}
		return nil
	case '[':
		return json.Unmarshal(data, &r.Rules)
	case '{':
		spec := new(RecurrenceSpec)
		if err := json.Unmarshal(data, spec); err != nil {
			return err
		}
		r.Spec = spec
		return nil
	}
	return fmt.Errorf("recurrence: unsupported shape %q", trimmed)
}

func (r Recurrence) MarshalJSON() ([]byte, error) {
	switch {
	case r.Spec != nil:
		return json.Marshal(r.Spec)
	case len(r.Rules) > 0:
		return json.Marshal(r.Rules)
	}
	return []byte(`""`), nil
}

// CanonicalEvent is the fully resolved representation: every default filled,
// all-day vs timed decided, recurrence compiled. It is what the key generator
// and the remote provider consume. For all-day events EndDate is the logical
// last day; the exclusive +1 day demanded by the remote API is applied only
// when the request body is built.
type CanonicalEvent struct {
	Title       string
	Description string
	Location    string
	Calendar    string

	AllDay    bool
	StartDate Date
	EndDate   Date
	StartTime string // "HH:MM:SS", empty for all-day
	EndTime   string // "HH:MM:SS", empty for all-day
	Timezone  string // IANA id, empty for all-day

	Notifications []Notification
	Invitees      []string
	Recurrence    []string // fully prefixed RRULE strings
}

// StartISO renders the start as a date or a local date-time string.
func (e CanonicalEvent) StartISO() string {
	if e.AllDay {
		return e.StartDate.String()
	}
	return e.StartDate.String() + "T" + e.StartTime
}

// EndISO renders the caller-visible end (inclusive for all-day events).
func (e CanonicalEvent) EndISO() string {
	if e.AllDay {
		return e.EndDate.String()
	}
	return e.EndDate.String() + "T" + e.EndTime
}

// EventRecord is one row of the per-owner local cache. The cache holds at
// most one record per unique key.
type EventRecord struct {
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	UniqueKey string `json:"unique_key"`
}

// RemoteEvent is the narrow view of an event held by the remote calendar
// service: the per-calendar id, the provider-assigned globally stable uid
// used as an undo fallback, and a handful of display fields.
type RemoteEvent struct {
	ID        string
	GlobalUID string
	Link      string
	Summary   string
	Start     string
	End       string
	Status    string
}

// Status reports what the reconciliation engine did with one event.
type Status string

func (s Status) String() string {
	return string(s)
}

const (
	StatusInserted Status = "inserted"
	StatusSkipped  Status = "duplicate_skipped"
	StatusUpdated  Status = "duplicate_updated"
	StatusError    Status = "error"
)
