package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

var commands = []command{
	ConfigureCommand,
	CreateCommand,
	UndoCommand,
	ListCommand,
	HistoryCommand,
}

type command interface {
	name() string
	description() string
	Run(ctx context.Context, cfgPath string, verbose bool, args []string) error
}

func main() {
	var (
		cfgPath string
		verbose bool
	)
	flag.StringVar(&cfgPath, "config", "config.yml", "path to the configuration file")
	flag.BoolVar(&verbose, "verbose", false, "log every remote call")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	for _, cmd := range commands {
		if cmd.name() != args[0] {
			continue
		}
		if err := cmd.Run(ctx, cfgPath, verbose, args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
	usage()
	os.Exit(2)
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage: %s [options] <command> [command options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-12s%s\n", cmd.name(), cmd.description())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
}
