package internal

import (
	"context"
	"time"
)

type Mux interface {
	Get(platform string) (Provider, error)
}

// Provider is the narrow surface of a remote calendar service that the
// reconciliation core needs. Implementations must scope every lookup to the
// given calendar and must return ErrNotFound (wrapped is fine) from GetEvent
// and DeleteEvent when the remote object does not exist; callers decide
// whether that is a failure.
type Provider interface {
	Login(_ context.Context, promptURL func(authURL string)) ([]byte, error)

	GetEvent(_ context.Context, calendarID, eventID string) (*RemoteEvent, error)
	// FindByKey looks up the event whose stored identity attribute equals
	// key. A miss is (nil, nil), not an error.
	FindByKey(_ context.Context, calendarID, key string) (*RemoteEvent, error)
	// FindByGlobalUID returns every event carrying the provider-assigned
	// globally stable uid. Used as the undo fallback when the per-calendar
	// id no longer resolves.
	FindByGlobalUID(_ context.Context, calendarID, globalUID string) ([]*RemoteEvent, error)

	InsertEvent(_ context.Context, calendarID string, _ *CanonicalEvent, key string) (*RemoteEvent, error)
	PatchEvent(_ context.Context, calendarID, eventID string, _ *CanonicalEvent, key string) (*RemoteEvent, error)
	DeleteEvent(_ context.Context, calendarID, eventID string) error

	ListEvents(_ context.Context, calendarID string, from, to time.Time) ([]*RemoteEvent, error)

	// EnsureCalendar resolves a calendar id or display name, creating the
	// calendar when the name matches nothing.
	EnsureCalendar(_ context.Context, nameOrID, timezone string) (string, error)
	DefaultTimezone(context.Context) (string, error)
}

// Account holds the stored credentials of one remote calendar account.
type Account struct {
	Platform string
	Name     string
	Auth     string
}

func (a Account) ID() string {
	return a.Platform + "/" + a.Name
}

// HistoryEntry is one recorded action (create, undo) for an owner.
type HistoryEntry struct {
	Action    string `db:"action"`
	Payload   string `db:"payload"`
	CreatedAt string `db:"created_at"`
}
