// Package identity derives the stable fingerprint used to deduplicate
// events across runs. The exact field set and ordering is load-bearing: the
// key computed when an event is created must match the key computed when the
// same input shows up again, so every caller goes through the normalizer
// first and then through Key with no extra defaulting of its own.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"calassist/internal"
)

// namespace distinguishes keys minted by this application from anything else
// that might end up in the same extended-property space.
const namespace = "automated"

// sep joins the field values. A unit separator cannot occur in titles,
// descriptions, timezone ids or email addresses, so fields never bleed into
// each other.
const sep = "\x1f"

// Fields are the identity-relevant values of an event. Everything here
// changes the key; nothing else does.
type Fields struct {
	Title         string
	Description   string
	Calendar      string
	StartDate     string
	StartTime     string // empty for all-day events
	EndDate       string
	Timezone      string // empty for all-day events
	Notifications []internal.Notification
	Invitees      []string
	Location      string
	Recurrence    []string
}

// FromEvent extracts the identity fields of a canonical event.
func FromEvent(ev *internal.CanonicalEvent) Fields {
	return Fields{
		Title:         ev.Title,
		Description:   ev.Description,
		Calendar:      ev.Calendar,
		StartDate:     ev.StartDate.String(),
		StartTime:     ev.StartTime,
		EndDate:       ev.EndDate.String(),
		Timezone:      ev.Timezone,
		Notifications: ev.Notifications,
		Invitees:      ev.Invitees,
		Location:      ev.Location,
		Recurrence:    ev.Recurrence,
	}
}

// Key returns the SHA-1 fingerprint of the fields as lowercase hex.
// Deterministic, pure, no I/O.
func Key(f Fields) string {
	joined := strings.Join([]string{
		namespace,
		f.Title,
		f.Description,
		f.Calendar,
		f.StartDate,
		f.StartTime,
		f.EndDate,
		f.Timezone,
		canonicalNotifications(f.Notifications),
		canonicalInvitees(f.Invitees),
		f.Location,
		canonicalRecurrence(f.Recurrence),
	}, sep)

	sum := sha1.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// canonicalNotifications keeps the caller's order: two reminder lists that
// differ only in order are distinct identities.
func canonicalNotifications(ns []internal.Notification) string {
	if len(ns) == 0 {
		return ""
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%s@%d", n.Method, n.Minutes)
	}
	return strings.Join(parts, "|")
}

// canonicalInvitees sorts before joining so that guest order never changes
// the identity.
func canonicalInvitees(invitees []string) string {
	if len(invitees) == 0 {
		return ""
	}
	sorted := make([]string, len(invitees))
	copy(sorted, invitees)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func canonicalRecurrence(rules []string) string {
	return strings.Join(rules, "|")
}
