// Package autostart registers the application to run at logon using each
// platform's native mechanism: a LaunchAgent plist on macOS, the registry
// Run key on Windows, an XDG autostart entry on Linux.
package autostart

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/advenimus/jwtools/internal/logging"
	"github.com/advenimus/jwtools/internal/platform"
)

var autostartLog = logging.ForComponent(logging.CompAutostart)

const (
	appLabel       = "com.advenimus.jwtools"
	windowsRunKey  = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`
	windowsValue   = "JWTools"
	desktopEntryID = "jwtools.desktop"
)

// regRunner executes the Windows reg utility. Swapped out in tests.
type regRunner interface {
	run(args ...string) (string, error)
}

type execRegRunner struct{}

func (execRegRunner) run(args ...string) (string, error) {
	out, err := exec.Command("reg", args...).CombinedOutput()
	return string(out), err
}

// Manager enables and disables run-at-logon for one executable.
type Manager struct {
	platform platform.Platform
	execPath string
	homeDir  string
	reg      regRunner
}

// New creates a manager for the current executable. The executable path is
// captured once so later toggles keep pointing at the same binary.
func New(p platform.Platform) (*Manager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("autostart: resolve executable: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("autostart: resolve home: %w", err)
	}
	return &Manager{platform: p, execPath: execPath, homeDir: home, reg: execRegRunner{}}, nil
}

// NewWith creates a manager with explicit paths and reg runner (tests).
func NewWith(p platform.Platform, execPath, homeDir string, reg regRunner) *Manager {
	if reg == nil {
		reg = execRegRunner{}
	}
	return &Manager{platform: p, execPath: execPath, homeDir: homeDir, reg: reg}
}

// Enable registers the executable to start at logon.
func (m *Manager) Enable() error {
	var err error
	switch m.platform {
	case platform.PlatformMacOS:
		err = m.writeLaunchAgent()
	case platform.PlatformWindows:
		_, err = m.reg.run("add", windowsRunKey, "/v", windowsValue, "/t", "REG_SZ",
			"/d", fmt.Sprintf("%q", m.execPath), "/f")
	case platform.PlatformLinux:
		err = m.writeDesktopEntry()
	default:
		err = fmt.Errorf("autostart: unsupported platform: %s", m.platform)
	}

	if err != nil {
		autostartLog.Error("autostart_enable_failed", slog.String("error", err.Error()))
		return err
	}
	autostartLog.Info("autostart_enabled", slog.String("platform", string(m.platform)))
	return nil
}

// Disable removes the logon registration. Removing a registration that does
// not exist is not an error.
func (m *Manager) Disable() error {
	switch m.platform {
	case platform.PlatformMacOS:
		err := os.Remove(m.launchAgentPath())
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	case platform.PlatformWindows:
		out, err := m.reg.run("delete", windowsRunKey, "/v", windowsValue, "/f")
		if err != nil && !strings.Contains(out, "unable to find") {
			return fmt.Errorf("autostart: reg delete: %w", err)
		}
		return nil
	case platform.PlatformLinux:
		err := os.Remove(m.desktopEntryPath())
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("autostart: unsupported platform: %s", m.platform)
	}
}

// IsEnabled reports whether a logon registration exists.
func (m *Manager) IsEnabled() bool {
	switch m.platform {
	case platform.PlatformMacOS:
		_, err := os.Stat(m.launchAgentPath())
		return err == nil
	case platform.PlatformWindows:
		out, err := m.reg.run("query", windowsRunKey, "/v", windowsValue)
		return err == nil && strings.Contains(out, windowsValue)
	case platform.PlatformLinux:
		_, err := os.Stat(m.desktopEntryPath())
		return err == nil
	default:
		return false
	}
}

func (m *Manager) launchAgentPath() string {
	return filepath.Join(m.homeDir, "Library", "LaunchAgents", appLabel+".plist")
}

func (m *Manager) desktopEntryPath() string {
	return filepath.Join(m.homeDir, ".config", "autostart", desktopEntryID)
}

func (m *Manager) writeLaunchAgent() error {
	path := m.launchAgentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(launchAgentPlist(m.execPath)), 0644)
}

func (m *Manager) writeDesktopEntry() error {
	path := m.desktopEntryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(desktopEntry(m.execPath)), 0644)
}

func launchAgentPlist(execPath string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`, appLabel, execPath)
}

func desktopEntry(execPath string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=JW Tools
Exec=%s
X-GNOME-Autostart-enabled=true
`, execPath)
}
