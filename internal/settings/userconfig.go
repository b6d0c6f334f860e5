package settings

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfigFileName is the TOML config file for ambient app preferences.
// Settings documents stay JSON; this file covers concerns the documents
// don't: theme, logging, update checks, the web remote.
const UserConfigFileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format.
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// Logs defines debug log settings
	Logs LogSettings `toml:"logs"`

	// Updates defines auto-update settings
	Updates UpdateSettings `toml:"updates"`

	// Web defines the local web remote settings
	Web WebSettings `toml:"web"`
}

// LogSettings defines debug log configuration.
type LogSettings struct {
	// DebugLevel sets the minimum log level: "debug", "info", "warn", "error"
	// Default: "info"
	DebugLevel string `toml:"debug_level"`

	// DebugFormat sets the log format: "json" (default) or "text"
	DebugFormat string `toml:"debug_format"`

	// DebugMaxMB is the max size in MB for debug.log before rotation
	// Default: 10
	DebugMaxMB int `toml:"debug_max_mb"`

	// DebugBackups is the number of rotated debug.log files to keep
	// Default: 5
	DebugBackups int `toml:"debug_backups"`

	// DebugRetentionDays is the number of days to keep rotated debug logs
	// Default: 10
	DebugRetentionDays int `toml:"debug_retention_days"`

	// DebugCompress enables gzip compression for rotated debug logs
	// Default: true
	DebugCompress bool `toml:"debug_compress"`
}

// UpdateSettings defines auto-update configuration.
type UpdateSettings struct {
	// AutoUpdate automatically installs updates without prompting
	// Default: false
	AutoUpdate bool `toml:"auto_update"`

	// CheckEnabled enables automatic update checks on startup
	// Default: true
	CheckEnabled bool `toml:"check_enabled"`

	// CheckIntervalHours is how often to check for updates (in hours)
	// Default: 24
	CheckIntervalHours int `toml:"check_interval_hours"`

	// NotifyInCLI shows update notification in CLI commands (not just TUI)
	// Default: true
	NotifyInCLI bool `toml:"notify_in_cli"`
}

// WebSettings defines the local web remote configuration.
type WebSettings struct {
	// Enabled allows starting the web remote (jwtools web)
	// Default: false
	Enabled bool `toml:"enabled"`

	// ListenAddr is the address the remote binds to
	// Default: "127.0.0.1:8430"
	ListenAddr string `toml:"listen_addr"`

	// Token protects the remote API; empty disables auth (loopback only)
	Token string `toml:"token"`
}

// DefaultUserConfig returns the ambient config defaults.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Theme: "dark",
		Logs: LogSettings{
			DebugLevel:         "info",
			DebugFormat:        "json",
			DebugMaxMB:         10,
			DebugBackups:       5,
			DebugRetentionDays: 10,
			DebugCompress:      true,
		},
		Updates: UpdateSettings{
			AutoUpdate:         false,
			CheckEnabled:       true,
			CheckIntervalHours: 24,
			NotifyInCLI:        true,
		},
		Web: WebSettings{
			Enabled:    false,
			ListenAddr: "127.0.0.1:8430",
		},
	}
}

// LoadUserConfig reads config.toml from dir, merged over defaults.
// A missing or unparsable file yields the defaults.
func LoadUserConfig(dir string) UserConfig {
	cfg := DefaultUserConfig()

	path := filepath.Join(dir, UserConfigFileName)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			settingsLog.Warn("userconfig_parse_failed", "error", err.Error())
		}
		return applyUserConfigDefaults(cfg)
	}
	return applyUserConfigDefaults(cfg)
}

// applyUserConfigDefaults refills zero values a partial file left behind.
func applyUserConfigDefaults(cfg UserConfig) UserConfig {
	def := DefaultUserConfig()
	if cfg.Theme == "" {
		cfg.Theme = def.Theme
	}
	if cfg.Logs.DebugLevel == "" {
		cfg.Logs.DebugLevel = def.Logs.DebugLevel
	}
	if cfg.Logs.DebugFormat == "" {
		cfg.Logs.DebugFormat = def.Logs.DebugFormat
	}
	if cfg.Logs.DebugMaxMB <= 0 {
		cfg.Logs.DebugMaxMB = def.Logs.DebugMaxMB
	}
	if cfg.Logs.DebugBackups <= 0 {
		cfg.Logs.DebugBackups = def.Logs.DebugBackups
	}
	if cfg.Logs.DebugRetentionDays <= 0 {
		cfg.Logs.DebugRetentionDays = def.Logs.DebugRetentionDays
	}
	if cfg.Updates.CheckIntervalHours <= 0 {
		cfg.Updates.CheckIntervalHours = def.Updates.CheckIntervalHours
	}
	if cfg.Web.ListenAddr == "" {
		cfg.Web.ListenAddr = def.Web.ListenAddr
	}
	return cfg
}

// SaveUserConfig writes config.toml to dir.
func SaveUserConfig(dir string, cfg UserConfig) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(dir, UserConfigFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
