package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/advenimus/jwtools/internal/history"
	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
	"github.com/advenimus/jwtools/internal/ui"
)

// consoleDisplay shows the custom message on the terminal. The launcher keeps
// it on screen for the configured display time.
type consoleDisplay struct{}

func (consoleDisplay) Show(title, message string, duration time.Duration) {
	fmt.Println()
	fmt.Printf("=== %s ===\n", title)
	fmt.Println(message)
	fmt.Printf("(continuing in %s)\n", duration)
}

func handleLaunch(dir string, args []string) {
	fs := flag.NewFlagSet("launch", flag.ExitOnError)
	noHistory := fs.Bool("no-history", false, "Do not record this run in history")
	fs.Usage = func() {
		fmt.Println("Usage: jwtools launch [options]")
		fmt.Println()
		fmt.Println("Runs the meeting launch sequence with the configured tools.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	store := settings.NewStore(dir)
	l := launcher.New(store, platform.Detect(),
		launcher.WithPrompter(ui.NewTerminalPrompter()),
		launcher.WithMessageDisplay(consoleDisplay{}),
		launcher.WithProgressFunc(func(p launcher.Progress) {
			fmt.Printf("[%3.0f%%] %s\n", p.Percent, p.Status)
		}),
	)

	result, err := l.Run()
	if err != nil {
		if errors.Is(err, settings.ErrNoToolEnabled) {
			fmt.Fprintln(os.Stderr, "Error: no tools are enabled. Enable at least one in settings.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if !*noHistory {
		recordLaunchRun(dir, result)
	}

	if result.State != launcher.StateCompleted {
		os.Exit(1)
	}
}

// recordLaunchRun stores the run outcome, best effort. A broken history
// database never blocks a launch.
func recordLaunchRun(dir string, result *launcher.RunResult) {
	db, err := history.Open(filepath.Join(dir, history.DBFileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		return
	}
	if err := db.RecordLaunch(result, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record launch: %v\n", err)
	}
}
