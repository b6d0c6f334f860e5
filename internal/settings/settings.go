// Package settings persists user configuration as one JSON document per
// concern inside the jwtools data directory. Reads are total: a missing,
// empty or malformed document yields the typed defaults, logged but never
// fatal. Writes overwrite the whole document.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/advenimus/jwtools/internal/logging"
)

var settingsLog = logging.ForComponent(logging.CompSettings)

// Settings document file names. These match the documents the app has always
// written, so an existing installation picks up its configuration unchanged.
const (
	AppSettingsFile       = "app-settings.json"
	ZoomConfigFile        = "zoom-config.json"
	UniversalSettingsFile = "universal-settings.json"
	MediaConfigFile       = "media-config.json"

	// OnboardingMarkerFile flags a completed first-run wizard.
	OnboardingMarkerFile = ".onboarding-complete"
)

// DisplayWhen values for the custom message policy.
const (
	DisplayNever   = "none"
	DisplayAlways  = "always"
	DisplayWeekend = "weekend"
)

// Default tool panel identifiers.
const (
	ToolWelcomeScreen = "welcome-screen"
	ToolMediaLauncher = "media-launcher"
	ToolStartZoom     = "start-zoom"
)

// ErrNoToolEnabled is returned when a save would leave every launch toggle off.
var ErrNoToolEnabled = errors.New("at least one tool must be enabled for the launch sequence")

// AppSettings holds application-level preferences.
type AppSettings struct {
	AlwaysMaximize bool   `json:"alwaysMaximize"`
	DefaultTool    string `json:"defaultTool"`
	RunAtLogon     bool   `json:"runAtLogon"`
}

// ZoomConfig holds the configured Zoom executable path. Empty means "use the
// platform default and verify it exists".
type ZoomConfig struct {
	ZoomPath string `json:"zoomPath"`
}

// MeetingTime is one scheduled meeting slot.
type MeetingTime struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// MeetingSchedule holds the congregation's two weekly meeting slots.
type MeetingSchedule struct {
	Midweek MeetingTime `json:"midweek"`
	Weekend MeetingTime `json:"weekend"`
}

// UniversalSettings are shared across tools: the meeting identity and schedule.
type UniversalSettings struct {
	MeetingID       string          `json:"meetingId"`
	MeetingSchedule MeetingSchedule `json:"meetingSchedule"`
}

// CustomMessageSettings configures the pre-meeting message step.
type CustomMessageSettings struct {
	Enabled     bool   `json:"enabled"`
	DisplayWhen string `json:"displayWhen"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	DisplayTime int    `json:"displayTime"`
}

// ToolToggles gate the individual launch-sequence steps.
type ToolToggles struct {
	LaunchOBS          bool `json:"launchOBS"`
	LaunchMediaManager bool `json:"launchMediaManager"`
	LaunchZoom         bool `json:"launchZoom"`
}

// Any reports whether at least one launch toggle is on.
func (t ToolToggles) Any() bool {
	return t.LaunchOBS || t.LaunchMediaManager || t.LaunchZoom
}

// MediaConfig is the media-launcher document: tool paths plus the custom
// message settings and the launch toggles.
type MediaConfig struct {
	OBSPath          string                `json:"obsPath"`
	MediaManagerPath string                `json:"mediaManagerPath"`
	MediaZoomPath    string                `json:"mediaZoomPath"`
	CustomMessage    CustomMessageSettings `json:"customMessageSettings"`
	ToolToggles      ToolToggles           `json:"toolToggles"`
}

// DefaultAppSettings returns the app settings used when no document exists.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		AlwaysMaximize: false,
		DefaultTool:    ToolWelcomeScreen,
		RunAtLogon:     false,
	}
}

// DefaultZoomConfig returns the zoom config used when no document exists.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{ZoomPath: ""}
}

// DefaultUniversalSettings returns the universal settings used when no
// document exists.
func DefaultUniversalSettings() UniversalSettings {
	return UniversalSettings{
		MeetingID: "",
		MeetingSchedule: MeetingSchedule{
			Midweek: MeetingTime{Day: "tuesday", Time: "19:30"},
			Weekend: MeetingTime{Day: "sunday", Time: "10:00"},
		},
	}
}

// DefaultMediaConfig returns the media config used when no document exists.
func DefaultMediaConfig() MediaConfig {
	return MediaConfig{
		CustomMessage: CustomMessageSettings{
			Enabled:     false,
			DisplayWhen: DisplayNever,
			Title:       "Display Custom Message",
			Message:     "Welcome to the meeting!",
			DisplayTime: 5,
		},
		ToolToggles: ToolToggles{
			LaunchOBS:          true,
			LaunchMediaManager: true,
			LaunchZoom:         true,
		},
	}
}

// Store reads and writes the settings documents under one directory.
type Store struct {
	dir string
	sf  singleflight.Group
}

// DefaultDir returns the jwtools data directory (~/.jwtools).
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jwtools"), nil
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store persists to.
func (s *Store) Dir() string {
	return s.dir
}

// load fills out (pre-seeded with defaults) from the named document.
// Absence and parse failures both leave the caller with defaults.
func (s *Store) load(name string, out any) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			settingsLog.Warn("settings_read_failed",
				slog.String("file", name), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		settingsLog.Warn("settings_parse_failed",
			slog.String("file", name), slog.String("error", err.Error()))
		return false
	}
	return true
}

// save serializes v to the named document with 2-space indentation.
func (s *Store) save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// AppSettings reads the app settings, merged over defaults.
func (s *Store) AppSettings() AppSettings {
	out := DefaultAppSettings()
	if !s.load(AppSettingsFile, &out) {
		return DefaultAppSettings()
	}
	if out.DefaultTool == "" {
		out.DefaultTool = ToolWelcomeScreen
	}
	return out
}

// SaveAppSettings overwrites the app settings document.
func (s *Store) SaveAppSettings(v AppSettings) error {
	return s.save(AppSettingsFile, v)
}

// ZoomConfig reads the zoom config, merged over defaults.
func (s *Store) ZoomConfig() ZoomConfig {
	out := DefaultZoomConfig()
	if !s.load(ZoomConfigFile, &out) {
		return DefaultZoomConfig()
	}
	return out
}

// SaveZoomConfig overwrites the zoom config document.
func (s *Store) SaveZoomConfig(v ZoomConfig) error {
	return s.save(ZoomConfigFile, v)
}

// UniversalSettings reads the universal settings, merged over defaults.
func (s *Store) UniversalSettings() UniversalSettings {
	out := DefaultUniversalSettings()
	if !s.load(UniversalSettingsFile, &out) {
		return DefaultUniversalSettings()
	}
	return out
}

// SaveUniversalSettings overwrites the universal settings document.
func (s *Store) SaveUniversalSettings(v UniversalSettings) error {
	return s.save(UniversalSettingsFile, v)
}

// MediaConfig reads the media config, merged over defaults.
func (s *Store) MediaConfig() MediaConfig {
	out := DefaultMediaConfig()
	if !s.load(MediaConfigFile, &out) {
		return DefaultMediaConfig()
	}
	if out.CustomMessage.DisplayWhen == "" {
		out.CustomMessage.DisplayWhen = DisplayNever
	}
	return out
}

// SaveMediaConfig overwrites the media config document. A config that would
// leave every launch toggle off is rejected, not silently corrected.
func (s *Store) SaveMediaConfig(v MediaConfig) error {
	if !v.ToolToggles.Any() {
		return ErrNoToolEnabled
	}
	return s.save(MediaConfigFile, v)
}

// SaveToolToggles updates only the toggles inside the media config.
func (s *Store) SaveToolToggles(t ToolToggles) error {
	if !t.Any() {
		return ErrNoToolEnabled
	}
	cfg := s.MediaConfig()
	cfg.ToolToggles = t
	return s.save(MediaConfigFile, cfg)
}

// SaveCustomMessage updates only the custom message settings inside the
// media config.
func (s *Store) SaveCustomMessage(m CustomMessageSettings) error {
	cfg := s.MediaConfig()
	cfg.CustomMessage = m
	return s.save(MediaConfigFile, cfg)
}

// Snapshot bundles every settings document read at once.
type Snapshot struct {
	App       AppSettings
	Zoom      ZoomConfig
	Universal UniversalSettings
	Media     MediaConfig
}

// Load reads all settings documents. Concurrent callers (UI reload, web
// remote) share a single read via singleflight.
func (s *Store) Load() Snapshot {
	v, _, _ := s.sf.Do("snapshot", func() (any, error) {
		return Snapshot{
			App:       s.AppSettings(),
			Zoom:      s.ZoomConfig(),
			Universal: s.UniversalSettings(),
			Media:     s.MediaConfig(),
		}, nil
	})
	return v.(Snapshot)
}

// Reset deletes every known settings document and the onboarding marker.
// Subsequent reads regenerate defaults lazily, so a partially applied reset
// self-heals. The first removal error is returned after attempting the rest.
func (s *Store) Reset() error {
	files := []string{
		AppSettingsFile,
		ZoomConfigFile,
		UniversalSettingsFile,
		MediaConfigFile,
		OnboardingMarkerFile,
	}

	var firstErr error
	for _, name := range files {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !os.IsNotExist(err) {
			settingsLog.Error("settings_reset_failed",
				slog.String("file", name), slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove %s: %w", name, err)
			}
		}
	}
	return firstErr
}
