// Package undo tracks which remote events each creation operation produced
// so the whole batch can be reversed. Batches form a stack: one undo pops
// and reverses the most recent batch; whatever could not be resolved is
// pushed back so a retry sees only the remainder.
package undo

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"calassist/internal"
)

// Entry is one created remote event: the per-calendar id, the provider's
// globally stable uid used as a deletion fallback, and the identity key it
// was created under.
type Entry struct {
	EventID   string `json:"event_id"`
	GlobalUID string `json:"global_uid,omitempty"`
	Key       string `json:"key,omitempty"`
}

// Batch is the set of entries created by one operation against one calendar.
type Batch struct {
	ID         string  `json:"id"`
	CalendarID string  `json:"calendar_id"`
	Entries    []Entry `json:"entries"`
}

func NewBatch(calendarID string, entries []Entry) Batch {
	return Batch{
		ID:         uuid.NewString(),
		CalendarID: calendarID,
		Entries:    entries,
	}
}

// Deleter is the slice of the remote provider that undo needs.
type Deleter interface {
	DeleteEvent(_ context.Context, calendarID, eventID string) error
	FindByGlobalUID(_ context.Context, calendarID, globalUID string) ([]*internal.RemoteEvent, error)
}

// Report summarizes one undo attempt.
type Report struct {
	Deleted    int
	Unresolved int
}

// Log is a stack of batches. Safe for use from one goroutine at a time per
// operation; the mutex only guards against accidental concurrent pushes from
// a surrounding front end.
type Log struct {
	mu      sync.Mutex
	batches []Batch
	output  io.Writer
}

func NewLog(output io.Writer) *Log {
	if output == nil {
		output = os.Stdout
	}
	return &Log{output: output}
}

func (l *Log) Push(b Batch) {
	if len(b.Entries) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, b)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.batches)
}

// PopAndReverse pops the most recent batch and deletes its events. Entries
// whose id no longer resolves are retried through the global-uid fallback;
// anything still unresolved is collected into a residual batch and pushed
// back onto the stack. Popping an empty stack reports zero work.
func (l *Log) PopAndReverse(ctx context.Context, provider Deleter) (Report, error) {
	l.mu.Lock()
	if len(l.batches) == 0 {
		l.mu.Unlock()
		return Report{}, nil
	}
	batch := l.batches[len(l.batches)-1]
	l.batches = l.batches[:len(l.batches)-1]
	l.mu.Unlock()

	var report Report
	var residual []Entry

	for _, entry := range batch.Entries {
		if err := ctx.Err(); err != nil {
			residual = append(residual, entry)
			report.Unresolved++
			continue
		}

		err := provider.DeleteEvent(ctx, batch.CalendarID, entry.EventID)
		if err == nil {
			report.Deleted++
			continue
		}
		if !errors.Is(err, internal.ErrNotFound) {
			internal.Logf(l.output, "undo:", "", "unable to delete event %s: %v", entry.EventID, err)
			residual = append(residual, entry)
			report.Unresolved++
			continue
		}

		if l.deleteByGlobalUID(ctx, provider, batch.CalendarID, entry) {
			report.Deleted++
		} else {
			residual = append(residual, entry)
			report.Unresolved++
		}
	}

	if len(residual) > 0 {
		l.Push(Batch{ID: batch.ID, CalendarID: batch.CalendarID, Entries: residual})
	}
	return report, nil
}

// deleteByGlobalUID is the fallback path: the per-calendar id 404'd, so look
// the event up by its globally stable uid and delete whatever that finds.
func (l *Log) deleteByGlobalUID(ctx context.Context, provider Deleter, calendarID string, entry Entry) bool {
	if entry.GlobalUID == "" {
		return false
	}
	matches, err := provider.FindByGlobalUID(ctx, calendarID, entry.GlobalUID)
	if err != nil {
		internal.Logf(l.output, "undo:", "", "global uid lookup failed for %s: %v", entry.GlobalUID, err)
		return false
	}
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if err := provider.DeleteEvent(ctx, calendarID, m.ID); err != nil && !errors.Is(err, internal.ErrNotFound) {
			internal.Logf(l.output, "undo:", "", "unable to delete event %s via global uid: %v", m.ID, err)
			return false
		}
	}
	return true
}
