package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"calassist/calendar"
	"calassist/calendar/google"
	"calassist/internal"
	"calassist/internal/config"
	"calassist/internal/sqlite"
)

const googleProvider = "google"

type commandInfo struct {
	Name        string
	Description string
}

func (c commandInfo) name() string        { return c.Name }
func (c commandInfo) description() string { return c.Description }

type Strings []string

func (i *Strings) String() string {
	return strings.Join(*i, ", ")
}

func (i *Strings) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage of %s %s:\n", os.Args[0], fs.Name())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
	}
	return fs
}

// runtime bundles what every command needs: the loaded config and the
// account database.
type runtime struct {
	cfg     *config.Config
	storage *sqlite.Storage
}

func openRuntime(cfgPath string) (*runtime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := sql.Open(sqlite.DriverName, cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:     cfg,
		storage: sqlite.NewStorage(db),
	}, nil
}

// account resolves the owner. An empty email is allowed when exactly one
// account is configured.
func (r *runtime) account(ctx context.Context, email string) (*internal.Account, error) {
	if email != "" {
		return r.storage.Account(ctx, googleProvider+"/"+email)
	}

	ids, err := r.storage.AccountIDs(ctx)
	if err != nil {
		return nil, err
	}
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("no account configured, run %q first", "configure")
	case 1:
		return r.storage.Account(ctx, ids[0])
	}
	return nil, fmt.Errorf("multiple accounts configured, pick one with -account: %s", strings.Join(ids, ", "))
}

// provider builds the calendar client for an account and hands it back
// through the platform mux.
func (r *runtime) provider(acc *internal.Account, verbose bool) (internal.Provider, error) {
	credJSON, err := os.ReadFile(r.cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	googleCal, err := google.NewClient(credJSON, []byte(acc.Auth))
	if err != nil {
		return nil, err
	}
	googleCal.Verbose = verbose
	googleCal.SendUpdates = r.cfg.SendUpdates

	mux := calendar.NewMux()
	mux.Register(googleProvider, googleCal)
	return mux.Get(acc.Platform)
}
