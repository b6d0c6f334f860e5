package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/advenimus/jwtools/internal/update"
)

func runUpdate(checkOnly bool) {
	fmt.Println("Checking for updates...")

	info, err := update.CheckForUpdate(Version, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: update check failed: %v\n", err)
		os.Exit(1)
	}

	if !info.Available {
		fmt.Printf("JW Tools v%s is up to date.\n", Version)
		return
	}

	fmt.Printf("Update available: v%s -> v%s\n", info.CurrentVersion, info.LatestVersion)
	printChangelog(info.CurrentVersion, info.LatestVersion)

	if checkOnly {
		fmt.Println("\nRun 'jwtools update' to install.")
		return
	}

	fmt.Print("\nUpdate now? [Y/n]: ")
	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "" && response != "y" && response != "yes" {
		fmt.Println("Skipped.")
		return
	}

	if err := update.PerformUpdate(info.DownloadURL); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Restart jwtools to use the new version.")
}

func printChangelog(currentVersion, latestVersion string) {
	content, err := update.FetchChangelog()
	if err != nil {
		return
	}

	entries := update.ParseChangelog(content)
	changes := update.GetChangesBetweenVersions(entries, currentVersion, latestVersion)
	if len(changes) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(update.FormatChangelogForDisplay(changes))
}
