// Package reconcile decides what to do with each incoming event: create it,
// skip it as a duplicate, or update the existing copy. The identity key is
// the sole deduplication handle; it is stored on the remote event as a
// private queryable attribute so later runs find earlier creations.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"calassist/internal"
	"calassist/internal/identity"
	"calassist/internal/undo"
)

// Policy selects what happens when an incoming event matches an existing
// one.
type Policy string

const (
	PolicySkip   Policy = "skip"
	PolicyUpdate Policy = "update"
	PolicyError  Policy = "error"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySkip, PolicyUpdate, PolicyError:
		return Policy(s), nil
	case "":
		return PolicySkip, nil
	}
	return "", fmt.Errorf("unknown on-conflict policy %q", s)
}

// Provider is the slice of the remote calendar service the engine needs.
type Provider interface {
	FindByKey(_ context.Context, calendarID, key string) (*internal.RemoteEvent, error)
	InsertEvent(_ context.Context, calendarID string, _ *internal.CanonicalEvent, key string) (*internal.RemoteEvent, error)
	PatchEvent(_ context.Context, calendarID, eventID string, _ *internal.CanonicalEvent, key string) (*internal.RemoteEvent, error)
	DeleteEvent(_ context.Context, calendarID, eventID string) error
}

// RecordStore mirrors successful creations and updates into the local cache.
type RecordStore interface {
	Upsert(owner string, rec internal.EventRecord) error
}

// Session carries the per-user state one interactive session owns: who the
// events belong to, which calendar they target, and the undo log that new
// batches land on. Callers create it and pass it in; the engine keeps no
// ambient state.
type Session struct {
	Owner      string
	CalendarID string
	Undo       *undo.Log
}

// Result reports the outcome for one event. A StatusError result carries
// the fatal error in Err and no Ref. Every other status carries Ref and
// counts as a success; its Err, when set, is a non-fatal local cache
// write failure that left the remote mutation in place.
type Result struct {
	Key    string
	Ref    *internal.RemoteEvent
	Status internal.Status
	Err    error
}

type Reconciler struct {
	provider Provider
	records  RecordStore
	output   io.Writer
}

func New(provider Provider, records RecordStore, output io.Writer) *Reconciler {
	if output == nil {
		output = os.Stdout
	}
	return &Reconciler{
		provider: provider,
		records:  records,
		output:   output,
	}
}

// Reconcile handles a single canonical event.
func (r *Reconciler) Reconcile(ctx context.Context, sess *Session, ev *internal.CanonicalEvent, policy Policy) Result {
	key := identity.Key(identity.FromEvent(ev))

	existing, err := r.provider.FindByKey(ctx, sess.CalendarID, key)
	if err != nil {
		return Result{Key: key, Status: internal.StatusError, Err: fmt.Errorf("looking up %q: %w", ev.Title, err)}
	}

	if existing != nil {
		switch policy {
		case PolicySkip:
			internal.Logf(r.output, "", sess.Owner, "Skipping duplicate %q (%s)", ev.Title, existing.ID)
			return Result{Key: key, Ref: existing, Status: internal.StatusSkipped}
		case PolicyError:
			return Result{Key: key, Status: internal.StatusError, Err: fmt.Errorf("%w: %q (%s)", internal.ErrDuplicate, ev.Title, key)}
		case PolicyUpdate:
			internal.Logf(r.output, "", sess.Owner, "Updating %q (%s)", ev.Title, existing.ID)
			ref, err := r.provider.PatchEvent(ctx, sess.CalendarID, existing.ID, ev, key)
			if err != nil {
				return Result{Key: key, Status: internal.StatusError, Err: fmt.Errorf("updating %q: %w", ev.Title, err)}
			}
			return r.mirrored(sess, ev, key, ref, internal.StatusUpdated)
		}
	}

	internal.Logf(r.output, "", sess.Owner, "Creating %q on %s", ev.Title, ev.StartISO())
	ref, err := r.provider.InsertEvent(ctx, sess.CalendarID, ev, key)
	if err != nil {
		return Result{Key: key, Status: internal.StatusError, Err: fmt.Errorf("creating %q: %w", ev.Title, err)}
	}
	return r.mirrored(sess, ev, key, ref, internal.StatusInserted)
}

// mirrored upserts the minimal record into the local cache. A cache write
// failure does not undo the remote mutation but must reach the caller, so it
// rides along on the result.
func (r *Reconciler) mirrored(sess *Session, ev *internal.CanonicalEvent, key string, ref *internal.RemoteEvent, status internal.Status) Result {
	res := Result{Key: key, Ref: ref, Status: status}
	if r.records == nil {
		return res
	}
	err := r.records.Upsert(sess.Owner, internal.EventRecord{
		Title:     ev.Title,
		Start:     ev.StartISO(),
		End:       ev.EndISO(),
		UniqueKey: key,
	})
	if err != nil {
		internal.Logf(r.output, "", sess.Owner, "Unable to persist local record for %q: %v", ev.Title, err)
		res.Err = err
	}
	return res
}

// ReconcileMany processes events independently and in order. One failing row
// never aborts the rest; its error is reported in its own result. When at
// least one event was inserted the new remote ids are pushed onto the
// session's undo log as a single batch.
func (r *Reconciler) ReconcileMany(ctx context.Context, sess *Session, events []*internal.CanonicalEvent, policy Policy) []Result {
	results := make([]Result, 0, len(events))
	var created []undo.Entry

	for _, ev := range events {
		res := r.Reconcile(ctx, sess, ev, policy)
		results = append(results, res)

		if res.Status == internal.StatusInserted && res.Ref != nil {
			created = append(created, undo.Entry{
				EventID:   res.Ref.ID,
				GlobalUID: res.Ref.GlobalUID,
				Key:       res.Key,
			})
		}
	}

	if len(created) > 0 && sess.Undo != nil {
		sess.Undo.Push(undo.NewBatch(sess.CalendarID, created))
	}
	return results
}

// Delete removes a remote event, treating "already gone" as success.
func (r *Reconciler) Delete(ctx context.Context, calendarID, eventID string) error {
	err := r.provider.DeleteEvent(ctx, calendarID, eventID)
	if errors.Is(err, internal.ErrNotFound) {
		return nil
	}
	return err
}
