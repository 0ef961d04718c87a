package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"calassist/internal"
)

// ParseClock normalizes the time shorthands users actually type into a
// strict "HH:MM:SS" form. Accepted: "10", "10:00", "10:00:30", "noon",
// "midnight". Out-of-range components are a malformed-input error.
func ParseClock(s string) (string, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "noon":
		return "12:00:00", nil
	case "midnight":
		return "00:00:00", nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return "", &internal.MalformedInputError{Field: "event_time", Value: raw, Reason: "too many components"}
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", &internal.MalformedInputError{Field: "event_time", Value: raw, Reason: "not a number"}
		}
		nums[i] = n
	}

	hour, min, sec := nums[0], nums[1], nums[2]
	if hour < 0 || hour > 23 {
		return "", &internal.MalformedInputError{Field: "event_time", Value: raw, Reason: "hour out of range"}
	}
	if min < 0 || min > 59 {
		return "", &internal.MalformedInputError{Field: "event_time", Value: raw, Reason: "minute out of range"}
	}
	if sec < 0 || sec > 59 {
		return "", &internal.MalformedInputError{Field: "event_time", Value: raw, Reason: "second out of range"}
	}

	return fmt.Sprintf("%02d:%02d:%02d", hour, min, sec), nil
}
