package main

import (
	"context"
	"flag"
	"fmt"
)

var HistoryCommand = _historyCommand{commandInfo{
	Name:        "history",
	Description: "Show recent create and undo actions",
}}

type _historyCommand struct {
	commandInfo
}

func (s _historyCommand) Run(ctx context.Context, cfgPath string, verbose bool, args []string) error {
	var (
		email string
		limit int
	)
	fs := newFlagSet(s.Name)
	fs.StringVar(&email, "account", "", "account email to show")
	fs.IntVar(&limit, "limit", 20, "how many actions to show")
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

	entries, err := rt.storage.History(ctx, acc.Name, limit)
	if err != nil {
		return err
	}

	w := flag.CommandLine.Output()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No recorded actions")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-8s%s\n", e.CreatedAt, e.Action, e.Payload)
	}
	return nil
}
