package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned by the reconciliation engine when a
	// duplicate is found and the policy is to treat that as an error.
	ErrDuplicate = errors.New("duplicate event")

	// ErrNotFound marks a remote object that does not (or no longer does)
	// exist. Providers wrap it so callers can pick it out with errors.Is.
	ErrNotFound = errors.New("event not found")
)

// MalformedInputError reports an event field that could not be parsed. It is
// fatal to that single event, never to a whole batch.
type MalformedInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsMalformed reports whether err is a MalformedInputError.
func IsMalformed(err error) bool {
	var m *MalformedInputError
	return errors.As(err, &m)
}
