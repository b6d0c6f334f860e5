package launcher

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

// zoomJoinURL is the deep link that makes the Zoom client join a meeting
// directly instead of prompting for an ID.
const zoomJoinURL = "zoommtg://zoom.us/join?confno=%s"

// LaunchResult is the outcome of one dispatch attempt. Dispatch never
// propagates errors past this boundary.
type LaunchResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Runner spawns an executable. Only the spawn itself is awaited, never the
// launched process's lifetime.
type Runner interface {
	Start(dir, name string, args ...string) error
}

// URLOpener hands a URI to the OS default handler.
type URLOpener interface {
	OpenURL(url string) error
}

// Dispatcher builds and executes the platform-specific invocation for a tool.
type Dispatcher struct {
	platform platform.Platform
	runner   Runner
	opener   URLOpener
}

// NewDispatcher creates a dispatcher using the real OS facilities.
func NewDispatcher(p platform.Platform) *Dispatcher {
	return &Dispatcher{platform: p, runner: execRunner{}, opener: osOpener{p: p}}
}

// NewDispatcherWith creates a dispatcher with injected collaborators (tests).
func NewDispatcherWith(p platform.Platform, runner Runner, opener URLOpener) *Dispatcher {
	return &Dispatcher{platform: p, runner: runner, opener: opener}
}

// Launch starts a tool from its resolved path with its startup flags.
func (d *Dispatcher) Launch(tool Tool, resolvedPath string) LaunchResult {
	name := tool.DisplayName()
	args := StartupArgs(tool)

	var err error
	switch d.platform {
	case platform.PlatformMacOS:
		// open handles .app bundles; --args forwards flags to the app
		openArgs := []string{resolvedPath}
		if len(args) > 0 {
			openArgs = append(openArgs, "--args")
			openArgs = append(openArgs, args...)
		}
		err = d.runner.Start("", "open", openArgs...)

	case platform.PlatformWindows:
		// Run from the install directory so the exe finds its adjacent
		// resource and locale files.
		dir := filepath.Dir(resolvedPath)
		exe := filepath.Base(resolvedPath)
		startArgs := append([]string{"/c", "start", "/b", "/d", dir, "", exe}, args...)
		err = d.runner.Start(dir, "cmd", startArgs...)

	default:
		return LaunchResult{Success: false, Message: "Unsupported platform"}
	}

	if err != nil {
		launcherLog.Error("tool_launch_failed",
			slog.String("tool", string(tool)), slog.String("error", err.Error()))
		return LaunchResult{Success: false, Message: fmt.Sprintf("Failed to launch %s: %s", name, err)}
	}

	launcherLog.Info("tool_launched",
		slog.String("tool", string(tool)), slog.String("path", resolvedPath))
	return LaunchResult{Success: true, Message: fmt.Sprintf("%s launched successfully", name)}
}

// LaunchZoom starts the Zoom client. With a valid meeting identifier it opens
// the join deep link so the meeting starts without prompting; otherwise it
// falls back to launching the executable. An identifier that normalizes to
// fewer than the minimum digits is a validation failure, not a spawn attempt.
func (d *Dispatcher) LaunchZoom(resolvedPath, rawMeetingID string) LaunchResult {
	if d.platform != platform.PlatformMacOS && d.platform != platform.PlatformWindows {
		return LaunchResult{Success: false, Message: "Unsupported platform"}
	}

	if rawMeetingID == "" {
		return d.Launch(ToolZoom, resolvedPath)
	}

	meetingID := settings.NormalizeMeetingID(rawMeetingID)
	if len(meetingID) < settings.MinMeetingIDDigits {
		return LaunchResult{
			Success: false,
			Message: fmt.Sprintf("Invalid meeting ID format: %s. Please enter a valid meeting ID (at least %d digits).",
				rawMeetingID, settings.MinMeetingIDDigits),
		}
	}

	url := fmt.Sprintf(zoomJoinURL, meetingID)
	if err := d.opener.OpenURL(url); err != nil {
		launcherLog.Error("zoom_deeplink_failed", slog.String("error", err.Error()))
		return LaunchResult{Success: false, Message: fmt.Sprintf("Failed to launch Zoom: %s", err)}
	}

	launcherLog.Info("zoom_deeplink_opened", slog.String("meeting_id", meetingID))
	return LaunchResult{Success: true, Message: fmt.Sprintf("Zoom launched with meeting ID %s", meetingID)}
}

// execRunner spawns processes without waiting for them to exit.
type execRunner struct{}

func (execRunner) Start(dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	return cmd.Start()
}

// osOpener opens a URI with the platform default handler.
type osOpener struct {
	p platform.Platform
}

func (o osOpener) OpenURL(url string) error {
	switch o.p {
	case platform.PlatformMacOS:
		return exec.Command("open", url).Start()
	case platform.PlatformWindows:
		return exec.Command("cmd", "/c", "start", "", url).Start()
	case platform.PlatformLinux:
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", o.p)
	}
}
