package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"path/filepath"

	"calassist/internal"
	"calassist/internal/undo"
)

var UndoCommand = _undoCommand{commandInfo{
	Name:        "undo",
	Description: "Delete the most recently created batch of events",
}}

type _undoCommand struct {
	commandInfo
}

func (s _undoCommand) Run(ctx context.Context, cfgPath string, verbose bool, args []string) error {
	var email string
	fs := newFlagSet(s.Name)
	fs.StringVar(&email, "account", "", "account email to undo on")
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

	w := flag.CommandLine.Output()
	owner := acc.Name
	undoPath := filepath.Join(rt.cfg.DataDir, owner+"_undo.json")
	undoLog := undo.LoadLog(undoPath, w)

	if undoLog.Len() == 0 {
		fmt.Fprintln(w, "Nothing to undo")
		return nil
	}

	report, err := undoLog.PopAndReverse(ctx, provider)
	if saveErr := undoLog.Save(undoPath); saveErr != nil && err == nil {
		err = saveErr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d events deleted", report.Deleted)
	if report.Unresolved > 0 {
		fmt.Fprintf(w, ", %d could not be resolved", report.Unresolved)
	}
	fmt.Fprintln(w)

	payload, _ := json.Marshal(report)
	if err := rt.storage.RecordHistory(ctx, owner, "undo", string(payload)); err != nil {
		internal.Logf(w, "", owner, "Unable to record history: %v", err)
	}
	return nil
}
