package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"calassist/internal"
)

var ListCommand = _listCommand{commandInfo{
	Name:        "list",
	Description: "List upcoming events",
}}

type _listCommand struct {
	commandInfo
}

func (s _listCommand) Run(ctx context.Context, cfgPath string, verbose bool, args []string) error {
	var (
		email     string
		calendars Strings
		days      int
		fromDate  internal.Date
	)
	fs := newFlagSet(s.Name)
	fs.StringVar(&email, "account", "", "account email to list")
	fs.Var(&calendars, "calendar", "calendar id or name, may be repeated")
	fs.IntVar(&days, "days", 7, "how many days ahead to list")
	fs.Var(&fromDate, "from", "list events since this date (e.g. 2025-06-01)")
	if err := fs.Parse(args); err != nil {
		return err
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

	if len(calendars) == 0 {
		calendars = Strings{rt.cfg.Calendar}
	}

	from := time.Now()
	if !fromDate.IsZero() {
		from = fromDate.Time
	}
	to := from.AddDate(0, 0, days)
	w := flag.CommandLine.Output()

	for _, cal := range calendars {
		calendarID, err := provider.EnsureCalendar(ctx, cal, rt.cfg.Timezone)
		if err != nil {
			return fmt.Errorf("resolving calendar %q: %w", cal, err)
		}
		events, err := provider.ListEvents(ctx, calendarID, from, to)
		if err != nil {
			return fmt.Errorf("listing %q: %w", cal, err)
		}

		if len(calendars) > 1 {
			fmt.Fprintf(w, "[%s]\n", cal)
		}
		if len(events) == 0 {
			fmt.Fprintln(w, "No upcoming events")
			continue
		}
		for _, ev := range events {
			printEvent(w, ev)
		}
	}
	return nil
}

func printEvent(w io.Writer, ev *internal.RemoteEvent) {
	fmt.Fprintf(w, "%s  %s\n", ev.Start, ev.Summary)
}
