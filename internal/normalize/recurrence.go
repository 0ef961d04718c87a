package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"calassist/internal"
)

const rulePrefix = "RRULE:"

// compileRecurrence turns any accepted recurrence shape into a list of fully
// prefixed RRULE strings. Every rule, whether caller-supplied or compiled
// from the structured form, is run through rrule-go so that garbage is
// rejected here rather than by the remote service.
func compileRecurrence(r internal.Recurrence, allDay bool) ([]string, error) {
	if r.IsZero() {
		return nil, nil
	}

	if r.Spec != nil {
		rule, err := compileSpec(r.Spec, allDay)
		if err != nil {
			return nil, err
		}
		return []string{rule}, nil
	}

	rules := make([]string, 0, len(r.Rules))
	for _, raw := range r.Rules {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		body := raw
		if strings.HasPrefix(strings.ToUpper(body), rulePrefix) {
			body = body[len(rulePrefix):]
		}
		if err := validateRule(body); err != nil {
			return nil, &internal.MalformedInputError{Field: "recurrence", Value: raw, Reason: err.Error()}
		}
		rules = append(rules, rulePrefix+body)
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return rules, nil
}

// compileSpec joins the present parts of a structured recurrence with ";".
// The UNTIL rendering must match the event's all-day/timed-ness: a bare date
// for all-day events, an end-of-day UTC instant otherwise.
func compileSpec(spec *internal.RecurrenceSpec, allDay bool) (string, error) {
	if spec.Freq == "" {
		return "", &internal.MalformedInputError{Field: "recurrence", Value: "freq", Reason: "missing"}
	}

	parts := []string{"FREQ=" + strings.ToUpper(spec.Freq)}
	if spec.Interval > 0 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", spec.Interval))
	}
	if len(spec.ByDay) > 0 {
		parts = append(parts, "BYDAY="+strings.ToUpper(strings.Join(spec.ByDay, ",")))
	}
	if len(spec.ByMonth) > 0 {
		parts = append(parts, "BYMONTH="+joinInts(spec.ByMonth))
	}
	if len(spec.ByMonthDay) > 0 {
		parts = append(parts, "BYMONTHDAY="+joinInts(spec.ByMonthDay))
	}
	if len(spec.BySetPos) > 0 {
		parts = append(parts, "BYSETPOS="+joinInts(spec.BySetPos))
	}
	if spec.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", spec.Count))
	}
	if spec.Until != "" {
		until, err := internal.ParseDate(spec.Until)
		if err != nil {
			return "", &internal.MalformedInputError{Field: "recurrence", Value: spec.Until, Reason: "until wants YYYY-MM-DD"}
		}
		if allDay {
			parts = append(parts, "UNTIL="+until.Format("20060102"))
		} else {
			parts = append(parts, "UNTIL="+until.Format("20060102")+"T235959Z")
		}
	}

	body := strings.Join(parts, ";")
	if err := validateRule(body); err != nil {
		return "", &internal.MalformedInputError{Field: "recurrence", Value: body, Reason: err.Error()}
	}
	return rulePrefix + body, nil
}

func validateRule(body string) error {
	opt, err := rrule.StrToROption(body)
	if err != nil {
		return err
	}
	if opt.Dtstart.IsZero() {
		// NewRRule wants a concrete anchor; any instant works for
		// validation purposes.
		opt.Dtstart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	_, err = rrule.NewRRule(*opt)
	return err
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ",")
}
