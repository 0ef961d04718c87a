package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"calassist/calendar/google"
	"calassist/internal"
)

var ConfigureCommand = _configureCommand{commandInfo{
	Name:        "configure",
	Description: "Give the application access to a calendar account",
}}

type _configureCommand struct {
	commandInfo
}

func (s _configureCommand) Run(ctx context.Context, cfgPath string, verbose bool, args []string) error {
	fs := newFlagSet(s.Name)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := openRuntime(cfgPath)
	if err != nil {
		return err
	}

	credJSON, err := os.ReadFile(rt.cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("reading credentials file: %w", err)
	}
	googleCal, err := google.NewClient(credJSON, nil)
	if err != nil {
		return fmt.Errorf("creating client: %v", err)
	}
	googleCal.Verbose = verbose

	w := flag.CommandLine.Output()

	authToken, err := googleCal.Login(ctx, func(authURL string) {
		fmt.Fprintf(w, "Go to the following link in your browser\n%s\n", authURL)
	})
	if err != nil {
		return fmt.Errorf("google: logging in: %v", err)
	}
	userEmail, err := googleCal.Email(ctx)
	if err != nil {
		return fmt.Errorf("google: getting email: %v", err)
	}

	acc := internal.Account{
		Platform: googleProvider,
		Name:     userEmail,
		Auth:     string(authToken),
	}
	fmt.Fprintf(w, "Saving account %q for %q provider...\n", acc.Name, acc.Platform)
	err = rt.storage.AddAccount(ctx, &acc)
	if err != nil {
		return fmt.Errorf("saving account: %v", err)
	}
	return nil
}
