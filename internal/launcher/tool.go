// Package launcher resolves, launches and sequences the external meeting
// tools: the Zoom client, OBS Studio and Meeting Media Manager.
package launcher

import (
	"os"
	"path/filepath"

	"github.com/advenimus/jwtools/internal/logging"
	"github.com/advenimus/jwtools/internal/platform"
)

var launcherLog = logging.ForComponent(logging.CompLauncher)

// Tool identifies one of the external applications the sequencer can launch.
type Tool string

const (
	ToolZoom         Tool = "zoom"
	ToolOBS          Tool = "obs"
	ToolMediaManager Tool = "media-manager"
)

// DisplayName returns the user-facing application name.
func (t Tool) DisplayName() string {
	switch t {
	case ToolZoom:
		return "Zoom"
	case ToolOBS:
		return "OBS Studio"
	case ToolMediaManager:
		return "Meeting Media Manager"
	default:
		return string(t)
	}
}

// DefaultPath returns the expected installation path for a tool on a
// platform. Unsupported platforms yield an empty string.
func DefaultPath(t Tool, p platform.Platform) string {
	switch p {
	case platform.PlatformMacOS:
		switch t {
		case ToolZoom:
			return "/Applications/zoom.us.app"
		case ToolOBS:
			return "/Applications/OBS.app"
		case ToolMediaManager:
			return "/Applications/Meeting Media Manager.app"
		}
	case platform.PlatformWindows:
		switch t {
		case ToolZoom:
			return `C:\Program Files\Zoom\bin\Zoom.exe`
		case ToolOBS:
			return `C:\Program Files\obs-studio\bin\64bit\obs64.exe`
		case ToolMediaManager:
			return `C:\Program Files\Meeting Media Manager\Meeting Media Manager.exe`
		}
	}
	return ""
}

// defaultPathCandidates returns every install location worth probing, most
// likely first. Zoom on Windows may be a per-user install under %APPDATA%.
func defaultPathCandidates(t Tool, p platform.Platform) []string {
	primary := DefaultPath(t, p)
	if primary == "" {
		return nil
	}

	candidates := []string{primary}
	if t == ToolZoom && p == platform.PlatformWindows {
		if appData := os.Getenv("APPDATA"); appData != "" {
			candidates = append(candidates, filepath.Join(appData, "Zoom", "bin", "Zoom.exe"))
		}
	}
	return candidates
}

// StartupArgs returns the extra command-line flags a tool is launched with.
// OBS starts its virtual camera so Zoom can pick it up as a video source.
func StartupArgs(t Tool) []string {
	if t == ToolOBS {
		return []string{"--startvirtualcam"}
	}
	return nil
}
