package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"calassist/internal"
	"calassist/internal/cache"
	"calassist/internal/input"
	"calassist/internal/normalize"
	"calassist/internal/reconcile"
	"calassist/internal/undo"
)

var CreateCommand = _createCommand{commandInfo{
	Name:        "create",
	Description: "Create the events described in a JSON or ICS file",
}}

type _createCommand struct {
	commandInfo
}

func (s _createCommand) Run(ctx context.Context, cfgPath string, verbose bool, args []string) error {
	var (
		email      string
		calName    string
		onConflict string
		timezone   string
	)
	fs := newFlagSet(s.Name)
	fs.StringVar(&email, "account", "", "account email to create events on")
	fs.StringVar(&calName, "calendar", "", "calendar id or name (overrides config)")
	fs.StringVar(&onConflict, "on-conflict", "", "skip, update or error (overrides config)")
	fs.StringVar(&timezone, "timezone", "", "timezone for timed events (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: %s create [options] <events-file>", os.Args[0])
	}

	rt, err := openRuntime(cfgPath)
	if err != nil {
		return err
	}
	acc, err := rt.account(ctx, email)
	if err != nil {
		return err
	}
	provider, err := rt.provider(acc, verbose)
	if err != nil {
		return err
	}

	events, err := readEvents(fs.Arg(0))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events in %s", fs.Arg(0))
	}

	if onConflict == "" {
		onConflict = rt.cfg.OnConflict
	}
	policy, err := reconcile.ParsePolicy(onConflict)
	if err != nil {
		return err
	}

	defaults, err := s.defaults(ctx, rt, provider, timezone, calName)
	if err != nil {
		return err
	}

	w := flag.CommandLine.Output()
	owner := acc.Name
	undoPath := filepath.Join(rt.cfg.DataDir, owner+"_undo.json")
	undoLog := undo.LoadLog(undoPath, w)

	reconciler := reconcile.New(provider, cache.NewStore(rt.cfg.DataDir), w)

	// Rows are independent: a malformed one is reported and the rest still
	// run. Rows naming different calendars are reconciled per calendar.
	var (
		results []reconcile.Result
		batches = make(map[string][]*internal.CanonicalEvent)
		order   []string
	)
	for _, in := range events {
		ev, err := normalize.Normalize(in, defaults)
		if err != nil {
			results = append(results, reconcile.Result{Status: internal.StatusError, Err: err})
			continue
		}
		if _, ok := batches[ev.Calendar]; !ok {
			order = append(order, ev.Calendar)
		}
		batches[ev.Calendar] = append(batches[ev.Calendar], ev)
	}

	for _, cal := range order {
		calendarID, err := provider.EnsureCalendar(ctx, cal, defaults.Timezone)
		if err != nil {
			for range batches[cal] {
				results = append(results, reconcile.Result{
					Status: internal.StatusError,
					Err:    fmt.Errorf("resolving calendar %q: %w", cal, err),
				})
			}
			continue
		}
		sess := &reconcile.Session{
			Owner:      owner,
			CalendarID: calendarID,
			Undo:       undoLog,
		}
		results = append(results, reconciler.ReconcileMany(ctx, sess, batches[cal], policy)...)
	}

	if err := undoLog.Save(undoPath); err != nil {
		return err
	}
	s.recordRecentKeys(rt.cfg.DataDir, results)

	summary := summarize(results)
	for _, res := range results {
		printResult(w, res)
	}
	fmt.Fprintf(w, "%d inserted, %d skipped, %d updated, %d failed\n",
		summary.Inserted, summary.Skipped, summary.Updated, summary.Failed)

	payload, _ := json.Marshal(summary)
	if err := rt.storage.RecordHistory(ctx, owner, "create", string(payload)); err != nil {
		internal.Logf(w, "", owner, "Unable to record history: %v", err)
	}

	if summary.Failed > 0 && summary.Failed == len(results) {
		return fmt.Errorf("all %d events failed", summary.Failed)
	}
	return nil
}

func (s _createCommand) defaults(ctx context.Context, rt *runtime, provider internal.Provider, timezone, calName string) (normalize.Defaults, error) {
	if timezone == "" {
		timezone = rt.cfg.Timezone
	}
	if timezone == "" {
		tz, err := provider.DefaultTimezone(ctx)
		if err != nil {
			return normalize.Defaults{}, fmt.Errorf("looking up account timezone: %w", err)
		}
		timezone = tz
	}
	if calName == "" {
		calName = rt.cfg.Calendar
	}
	return normalize.Defaults{
		Timezone: timezone,
		Calendar: calName,
	}, nil
}

func (s _createCommand) recordRecentKeys(dataDir string, results []reconcile.Result) {
	recent := undo.RecentKeys{Path: filepath.Join(dataDir, "recent_event_keys.json")}
	for _, res := range results {
		if res.Status == internal.StatusInserted && res.Ref != nil {
			// Best effort, the authoritative undo state is the undo log.
			_ = recent.Append([2]string{res.Key, res.Ref.ID})
		}
	}
}

func readEvents(name string) ([]internal.EventInput, error) {
	var r io.Reader
	if name == "-" {
		r = os.Stdin
		name = "stdin.json"
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return input.DecodeFile(name, r)
}

type createSummary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

func summarize(results []reconcile.Result) createSummary {
	var s createSummary
	for _, res := range results {
		switch res.Status {
		case internal.StatusInserted:
			s.Inserted++
		case internal.StatusSkipped:
			s.Skipped++
		case internal.StatusUpdated:
			s.Updated++
		case internal.StatusError:
			s.Failed++
		}
	}
	return s
}

func printResult(w io.Writer, res reconcile.Result) {
	if res.Ref == nil {
		fmt.Fprintf(w, "%s: %v\n", res.Status, res.Err)
		return
	}
	ref := res.Ref
	link := ref.Link
	if link == "" {
		link = ref.ID
	}
	if res.Err != nil {
		// The remote write succeeded; only the local cache is stale.
		fmt.Fprintf(w, "%s: %q %s (local cache: %v)\n", res.Status, ref.Summary, link, res.Err)
		return
	}
	fmt.Fprintf(w, "%s: %q %s\n", res.Status, ref.Summary, link)
}
