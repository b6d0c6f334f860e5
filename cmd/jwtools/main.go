package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/advenimus/jwtools/internal/logging"
	"github.com/advenimus/jwtools/internal/settings"
	"github.com/advenimus/jwtools/internal/update"
)

const Version = "1.0.0"

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal
// capabilities. Prefers TrueColor, falls back to ANSI256.
func initColorProfile() {
	// Allow user override via environment variable
	// JWTOOLS_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("JWTOOLS_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	if colorTerm := os.Getenv("COLORTERM"); colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) || term == t {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	if os.Getenv("WT_SESSION") != "" || // Windows Terminal
		os.Getenv("ITERM_SESSION_ID") != "" || // iTerm2
		os.Getenv("TERMINAL_EMULATOR") != "" || // JetBrains terminals
		os.Getenv("KONSOLE_VERSION") != "" { // Konsole
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
}

// initLogging sets up structured logging from the user config. Logs go to
// ~/.jwtools/debug.log; without JWTOOLS_DEBUG only info and above is kept.
func initLogging(dir string, cfg settings.UserConfig) {
	logCfg := logging.Config{
		Debug:      os.Getenv("JWTOOLS_DEBUG") != "",
		LogDir:     dir,
		Level:      cfg.Logs.DebugLevel,
		Format:     cfg.Logs.DebugFormat,
		MaxSizeMB:  cfg.Logs.DebugMaxMB,
		MaxBackups: cfg.Logs.DebugBackups,
		MaxAgeDays: cfg.Logs.DebugRetentionDays,
		Compress:   cfg.Logs.DebugCompress,
	}
	if logCfg.Debug {
		logCfg.Level = "debug"
	}
	logging.Init(logCfg)
}

// printUpdateNotice checks for updates and prints a one-liner if available.
// Uses the cache so CLI commands never block on the network.
func printUpdateNotice(cfg settings.UserConfig) {
	if !cfg.Updates.CheckEnabled || !cfg.Updates.NotifyInCLI {
		return
	}

	info, err := update.CheckForUpdate(Version, false)
	if err != nil || info == nil || !info.Available {
		return
	}

	fmt.Fprintf(os.Stderr, "\nUpdate available: v%s -> v%s (run: jwtools update)\n",
		info.CurrentVersion, info.LatestVersion)
}

func main() {
	dir, err := settings.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve settings directory: %v\n", err)
		os.Exit(1)
	}

	userCfg := settings.LoadUserConfig(dir)
	update.SetCheckInterval(userCfg.Updates.CheckIntervalHours)

	initLogging(dir, userCfg)
	defer logging.Shutdown()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logging.Shutdown()
		os.Exit(0)
	}()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("JW Tools v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "launch":
			handleLaunch(dir, args[1:])
			printUpdateNotice(userCfg)
			return
		case "attendance":
			handleAttendance(dir, args[1:])
			printUpdateNotice(userCfg)
			return
		case "settings":
			handleSettings(dir, args[1:])
			return
		case "history":
			handleHistory(dir, args[1:])
			return
		case "setup":
			handleSetup(dir, args[1:])
			return
		case "web":
			handleWeb(dir, userCfg, args[1:])
			return
		case "update":
			handleUpdate(args[1:])
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			printHelp()
			os.Exit(1)
		}
	}

	runTUI(dir, userCfg)
}

func printHelp() {
	fmt.Println("JW Tools - meeting launcher for congregation PCs")
	fmt.Println()
	fmt.Println("Usage: jwtools [command]")
	fmt.Println()
	fmt.Println("Running without a command opens the interactive interface.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  launch              Run the meeting launch sequence")
	fmt.Println("  attendance          Calculate and record meeting attendance")
	fmt.Println("  settings show       Print the current settings")
	fmt.Println("  settings reset      Reset all settings to defaults")
	fmt.Println("  history             Show recorded attendance and launches")
	fmt.Println("  setup               Re-run first-launch setup on next start")
	fmt.Println("  web                 Start the local web remote")
	fmt.Println("  update              Check for and install updates")
	fmt.Println("  version             Print the version")
	fmt.Println("  help                Show this help")
}
