package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/history"
)

func handleAttendance(dir string, args []string) {
	fs := flag.NewFlagSet("attendance", flag.ExitOnError)
	counts := fs.String("counts", "", "Comma-separated poll answers: devices with 1 person, 2 people, ... (up to 10)")
	phone := fs.Int("phone", 0, "Participants who joined by phone call")
	noHistory := fs.Bool("no-history", false, "Do not record the total in history")
	fs.Usage = func() {
		fmt.Println("Usage: jwtools attendance -counts <n1,n2,...> [-phone N]")
		fmt.Println()
		fmt.Println("Calculates total attendance from a Zoom poll. Each position in")
		fmt.Println("-counts is the number of devices with that many people on them.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  jwtools attendance -counts 12,20,3 -phone 5")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *counts == "" && *phone == 0 {
		fs.Usage()
		os.Exit(1)
	}

	c, err := parseCounts(*counts, *phone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	total, err := attendance.Calculate(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Total attendance: %d\n", total)

	if *noHistory {
		return
	}
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
	if err := db.RecordAttendance(c, total, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record attendance: %v\n", err)
	}
}

func parseCounts(spec string, phone int) (attendance.Counts, error) {
	var c attendance.Counts
	c.Phone = phone

	if spec == "" {
		return c, nil
	}

	parts := strings.Split(spec, ",")
	if len(parts) > attendance.NumPollOptions {
		return c, fmt.Errorf("at most %d poll options, got %d", attendance.NumPollOptions, len(parts))
	}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return c, fmt.Errorf("invalid count %q at position %d", part, i+1)
		}
		c.Options[i] = n
	}
	return c, nil
}
