package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/advenimus/jwtools/internal/history"
)

func handleHistory(dir string, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("n", 10, "Number of records to show")
	fs.Usage = func() {
		fmt.Println("Usage: jwtools history [options]")
		fmt.Println()
		fmt.Println("Shows recent attendance totals and launch runs.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	db, err := history.Open(filepath.Join(dir, history.DBFileName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	attendanceRecords, err := db.RecentAttendance(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Attendance:")
	if len(attendanceRecords) == 0 {
		fmt.Println("  (none recorded)")
	}
	for _, rec := range attendanceRecords {
		fmt.Printf("  %s  total %d (phone %d)\n",
			rec.RecordedAt.Local().Format("2006-01-02 15:04"), rec.Total, rec.Counts.Phone)
	}
	fmt.Println()

	launches, err := db.RecentLaunches(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Launches:")
	if len(launches) == 0 {
		fmt.Println("  (none recorded)")
	}
	for _, rec := range launches {
		line := fmt.Sprintf("  %s  %s (%d steps)",
			rec.RecordedAt.Local().Format("2006-01-02 15:04"), rec.State, rec.StepsRun)
		if rec.FailedStep != "" {
			line += fmt.Sprintf(", failed at %s", rec.FailedStep)
		}
		fmt.Println(line)
	}
}
