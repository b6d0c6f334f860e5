package main

import (
	"fmt"
	"os"

	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/onboarding"
	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

func handleSettings(dir string, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: jwtools settings <show|reset>")
		os.Exit(1)
	}

	store := settings.NewStore(dir)

	switch args[0] {
	case "show":
		printSettings(store)
	case "reset":
		if err := store.Reset(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Settings reset to defaults. Setup runs again on next start.")
	default:
		fmt.Fprintf(os.Stderr, "Unknown settings command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: jwtools settings <show|reset>")
		os.Exit(1)
	}
}

func printSettings(store *settings.Store) {
	snapshot := store.Load()

	fmt.Printf("Settings directory: %s\n\n", store.Dir())

	meetingID := snapshot.Universal.MeetingID
	if meetingID == "" {
		meetingID = "(not set)"
	}
	fmt.Printf("Meeting ID:      %s\n", meetingID)

	sched := snapshot.Universal.MeetingSchedule
	fmt.Printf("Midweek meeting: %s %s\n", sched.Midweek.Day, sched.Midweek.Time)
	fmt.Printf("Weekend meeting: %s %s\n", sched.Weekend.Day, sched.Weekend.Time)
	fmt.Println()

	toggles := snapshot.Media.ToolToggles
	fmt.Printf("Launch OBS Studio:            %s\n", onOffWord(toggles.LaunchOBS))
	fmt.Printf("Launch Meeting Media Manager: %s\n", onOffWord(toggles.LaunchMediaManager))
	fmt.Printf("Launch Zoom:                  %s\n", onOffWord(toggles.LaunchZoom))
	fmt.Println()

	msg := snapshot.Media.CustomMessage
	fmt.Printf("Custom message:  %s", msg.DisplayWhen)
	if msg.DisplayWhen != settings.DisplayNever {
		fmt.Printf(" (%q, %ds)", msg.Title, msg.DisplayTime)
	}
	fmt.Println()
	fmt.Println()

	p := platform.Detect()
	resolver := launcher.New(store, p).Resolver()
	for _, tool := range []launcher.Tool{launcher.ToolZoom, launcher.ToolOBS, launcher.ToolMediaManager} {
		path, found := resolver.Resolve(tool)
		marker := "ok"
		if !found {
			marker = "missing"
		}
		if path == "" {
			path = "(no default for this platform)"
		}
		fmt.Printf("%-22s %-8s %s\n", tool.DisplayName()+":", marker, path)
	}
}

func onOffWord(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// handleSetup clears the onboarding marker so the setup wizard runs on the
// next interactive start. Settings documents are left alone.
func handleSetup(dir string, args []string) {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: jwtools setup")
		os.Exit(1)
	}

	store := settings.NewStore(dir)
	ob := onboarding.New(store, platform.Detect(), nil)
	if err := ob.ResetStatus(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Setup will run again the next time jwtools starts.")
}
