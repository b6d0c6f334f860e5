package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/history"
	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
	"github.com/advenimus/jwtools/internal/web"
)

func handleWeb(dir string, userCfg settings.UserConfig, args []string) {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	listenAddr := fs.String("listen", userCfg.Web.ListenAddr, "Listen address for the web remote")
	token := fs.String("token", userCfg.Web.Token, "Bearer token for API/WS access")
	fs.Usage = func() {
		fmt.Println("Usage: jwtools web [options]")
		fmt.Println()
		fmt.Println("Starts the local web remote so another device can trigger the")
		fmt.Println("launch sequence and record attendance.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  jwtools web")
		fmt.Println("  jwtools web -listen 127.0.0.1:9000 -token secret")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Unexpected arguments: %v\n", fs.Args())
		os.Exit(1)
	}

	store := settings.NewStore(dir)
	events := launcher.NewBroadcaster()
	l := launcher.New(store, platform.Detect(),
		launcher.WithProgressFunc(events.Publish),
	)

	var saver web.AttendanceSaver
	var recordLaunch func(*launcher.RunResult)
	db, err := history.Open(filepath.Join(dir, history.DBFileName))
	if err == nil {
		if err := db.Migrate(); err == nil {
			defer db.Close()
			saver = func(c attendance.Counts, total int) error {
				return db.RecordAttendance(c, total, time.Now())
			}
			recordLaunch = func(result *launcher.RunResult) {
				_ = db.RecordLaunch(result, time.Now())
			}
		} else {
			db.Close()
			fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
	}

	server := web.NewServer(web.Config{
		ListenAddr:   *listenAddr,
		Token:        *token,
		Version:      Version,
		RecordLaunch: recordLaunch,
	}, store, l, events, saver)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	fmt.Printf("Web remote listening on http://%s\n", server.Addr())
	if *token == "" {
		fmt.Println("Warning: no token set; anyone on this machine can control launches.")
	}
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func handleUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	checkOnly := fs.Bool("check", false, "Only check whether an update is available")
	fs.Usage = func() {
		fmt.Println("Usage: jwtools update [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	runUpdate(*checkOnly)
}
