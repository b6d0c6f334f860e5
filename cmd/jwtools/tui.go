package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/autostart"
	"github.com/advenimus/jwtools/internal/history"
	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/logging"
	"github.com/advenimus/jwtools/internal/onboarding"
	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
	"github.com/advenimus/jwtools/internal/ui"
	"github.com/advenimus/jwtools/internal/update"
)

// logDisplay surfaces the custom message through the launch panel's status
// line; the text itself only goes to the log. The launcher holds the sequence
// for the configured display time either way.
type logDisplay struct{}

func (logDisplay) Show(title, message string, duration time.Duration) {
	logging.ForComponent(logging.CompLauncher).Info("custom_message_shown",
		"title", title, "message", message, "seconds", int(duration.Seconds()))
}

func runTUI(dir string, userCfg settings.UserConfig) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: not a terminal. Run 'jwtools help' for CLI commands.")
		os.Exit(1)
	}

	ui.InitTheme(ui.ResolveTheme(userCfg.Theme))

	store := settings.NewStore(dir)
	p := platform.Detect()

	events := launcher.NewBroadcaster()
	l := launcher.New(store, p,
		launcher.WithMessageDisplay(logDisplay{}),
		launcher.WithProgressFunc(events.Publish),
	)

	var autostartMgr onboarding.AutostartToggler
	if mgr, err := autostart.New(p); err == nil {
		autostartMgr = mgr
	}
	ob := onboarding.New(store, p, autostartMgr)

	deps := ui.Deps{
		Store:      store,
		Launcher:   l,
		Onboarding: ob,
		Version:    Version,
	}

	progressCh, cancelProgress := events.Subscribe()
	defer cancelProgress()
	deps.Events = progressCh

	db, err := history.Open(filepath.Join(dir, history.DBFileName))
	if err == nil {
		if err := db.Migrate(); err != nil {
			db.Close()
			db = nil
		}
	} else {
		db = nil
	}
	if db != nil {
		defer db.Close()
		deps.SaveAttendance = func(c attendance.Counts, total int) error {
			return db.RecordAttendance(c, total, time.Now())
		}
		deps.RecordLaunch = func(result *launcher.RunResult) {
			_ = db.RecordLaunch(result, time.Now())
		}
	}

	if watcher, err := settings.NewWatcher(dir); err == nil {
		defer watcher.Close()
		deps.Watcher = watcher
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if tw := ui.NewThemeWatcher(ctx); tw != nil {
		defer tw.Close()
		deps.ThemeWatcher = tw
	}

	// Kick off a cached update check; the result lands in the cache and is
	// reported on the next CLI invocation.
	if userCfg.Updates.CheckEnabled {
		_ = update.CheckForUpdateAsync(Version)
	}

	program := tea.NewProgram(ui.NewModel(deps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
