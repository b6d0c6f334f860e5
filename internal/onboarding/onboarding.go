// Package onboarding runs the first-launch flow: detect a fresh install,
// apply the setup wizard's answers to the settings documents, and track
// completion with a marker file.
package onboarding

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/logging"
	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

var onboardingLog = logging.ForComponent(logging.CompOnboarding)

// PC purpose answers from the setup wizard.
const (
	PurposeZoomHost      = "zoom-host"
	PurposeZoomAttendant = "zoom-attendant"
	PurposeOther         = "other"
)

// Answers collects everything the setup wizard asked.
type Answers struct {
	MeetingID string

	MidweekDay  string
	MidweekTime string
	WeekendDay  string
	WeekendTime string

	PCPurpose       string
	UseOBS          bool
	UseMediaManager bool

	UseReminder     bool
	ReminderWhen    string
	ReminderTitle   string
	ReminderMessage string

	AutoLaunch bool
}

// AutostartToggler is the run-at-logon registration collaborator.
type AutostartToggler interface {
	Enable() error
}

// Manager applies onboarding decisions against a settings store.
type Manager struct {
	store     *settings.Store
	platform  platform.Platform
	autostart AutostartToggler
}

// New creates an onboarding manager. autostart may be nil when the platform
// offers no logon registration.
func New(store *settings.Store, p platform.Platform, autostart AutostartToggler) *Manager {
	return &Manager{store: store, platform: p, autostart: autostart}
}

func (m *Manager) markerPath() string {
	return filepath.Join(m.store.Dir(), settings.OnboardingMarkerFile)
}

// IsFirstLaunch reports whether no settings document has ever been written.
func (m *Manager) IsFirstLaunch() bool {
	files := []string{
		settings.AppSettingsFile,
		settings.ZoomConfigFile,
		settings.MediaConfigFile,
		settings.UniversalSettingsFile,
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(m.store.Dir(), f)); err == nil {
			return false
		}
	}
	return true
}

// IsComplete reports whether the onboarding marker exists.
func (m *Manager) IsComplete() bool {
	_, err := os.Stat(m.markerPath())
	return err == nil
}

// NeedsOnboarding reports whether the wizard should run.
func (m *Manager) NeedsOnboarding() bool {
	return m.IsFirstLaunch() && !m.IsComplete()
}

// MarkComplete writes the onboarding marker with a completion timestamp.
func (m *Manager) MarkComplete() error {
	if err := os.MkdirAll(m.store.Dir(), 0700); err != nil {
		return err
	}
	return os.WriteFile(m.markerPath(), []byte(time.Now().Format(time.RFC3339)), 0600)
}

// ResetStatus removes the marker so the wizard runs again.
func (m *Manager) ResetStatus() error {
	err := os.Remove(m.markerPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Apply writes the wizard's answers into the settings documents, registers
// autostart when asked for, and marks onboarding complete. Defaults fill in
// any answer left blank.
func (m *Manager) Apply(a Answers) error {
	uni := m.store.UniversalSettings()
	uni.MeetingID = a.MeetingID
	uni.MeetingSchedule = settings.MeetingSchedule{
		Midweek: settings.MeetingTime{
			Day:  orDefault(a.MidweekDay, "tuesday"),
			Time: orDefault(a.MidweekTime, "19:30"),
		},
		Weekend: settings.MeetingTime{
			Day:  orDefault(a.WeekendDay, "sunday"),
			Time: orDefault(a.WeekendTime, "10:00"),
		},
	}
	if err := m.store.SaveUniversalSettings(uni); err != nil {
		return fmt.Errorf("onboarding: save universal settings: %w", err)
	}

	media := m.store.MediaConfig()
	media.ToolToggles = settings.ToolToggles{
		LaunchOBS:          a.UseOBS,
		LaunchMediaManager: a.UseMediaManager,
		LaunchZoom:         true, // Zoom is always part of the sequence
	}
	if a.PCPurpose == PurposeZoomHost && a.UseReminder {
		media.CustomMessage = settings.CustomMessageSettings{
			Enabled:     true,
			DisplayWhen: orDefault(a.ReminderWhen, settings.DisplayWeekend),
			Title:       orDefault(a.ReminderTitle, "Pre-Meeting Checklist"),
			Message:     orDefault(a.ReminderMessage, "Remember to check all meeting preparations"),
			DisplayTime: 5,
		}
	}
	if err := m.store.SaveMediaConfig(media); err != nil {
		return fmt.Errorf("onboarding: save media config: %w", err)
	}

	defaultTool := settings.ToolWelcomeScreen
	switch a.PCPurpose {
	case PurposeZoomHost:
		defaultTool = settings.ToolMediaLauncher
	case PurposeZoomAttendant:
		defaultTool = settings.ToolStartZoom
	}
	app := settings.AppSettings{
		AlwaysMaximize: a.AutoLaunch,
		DefaultTool:    defaultTool,
		RunAtLogon:     a.AutoLaunch,
	}
	if err := m.store.SaveAppSettings(app); err != nil {
		return fmt.Errorf("onboarding: save app settings: %w", err)
	}

	if a.AutoLaunch && m.autostart != nil {
		if err := m.autostart.Enable(); err != nil {
			// Logon registration is best effort; the rest of setup stands.
			onboardingLog.Warn("autostart_enable_failed", slog.String("error", err.Error()))
		}
	}

	if err := m.MarkComplete(); err != nil {
		return fmt.Errorf("onboarding: mark complete: %w", err)
	}

	onboardingLog.Info("onboarding_applied",
		slog.String("pc_purpose", a.PCPurpose), slog.String("default_tool", defaultTool))
	return nil
}

// MissingPath names a tool whose expected installation was not found.
type MissingPath struct {
	App         string
	DefaultPath string
}

// CheckApplicationPaths probes the default install location of every tool
// the wizard's answers put in use and reports the ones that are absent.
func (m *Manager) CheckApplicationPaths(a Answers) []MissingPath {
	var missing []MissingPath

	check := func(tool launcher.Tool) {
		path := launcher.DefaultPath(tool, m.platform)
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, MissingPath{App: tool.DisplayName(), DefaultPath: path})
		}
	}

	check(launcher.ToolZoom)
	if a.UseOBS {
		check(launcher.ToolOBS)
	}
	if a.UseMediaManager {
		check(launcher.ToolMediaManager)
	}
	return missing
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
