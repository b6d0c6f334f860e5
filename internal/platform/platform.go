package platform

import (
	"runtime"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformUnknown Platform = "unknown"
)

// cached detection result
var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}

	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

// detectPlatform performs the actual platform detection
func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}

// SupportsToolLaunch returns true if the platform can launch the external
// meeting tools. Only macOS and Windows carry default install paths for
// Zoom, OBS and Meeting Media Manager.
func SupportsToolLaunch(p Platform) bool {
	return p == PlatformMacOS || p == PlatformWindows
}

// ExecutableExtensions returns the file-picker extension filter for
// application binaries on the given platform.
func ExecutableExtensions(p Platform) []string {
	switch p {
	case PlatformMacOS:
		return []string{"app"}
	case PlatformWindows:
		return []string{"exe"}
	default:
		return nil
	}
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformWindows:
		return "Windows"
	case PlatformLinux:
		return "Linux"
	default:
		return "Unknown"
	}
}
