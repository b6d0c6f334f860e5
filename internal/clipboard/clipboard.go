// Package clipboard copies small strings (attendance totals, the Zoom join
// link) to the system clipboard.
package clipboard

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/advenimus/jwtools/internal/platform"
)

// Copy copies text to the system clipboard using platform-appropriate
// methods. The fallback chain is: native clipboard tool, then the OSC 52
// escape sequence. Returns the method used.
func Copy(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("no content to copy")
	}

	method, err := copyNative(text)
	if err == nil {
		return method, nil
	}

	if err := copyOSC52(text); err != nil {
		return "", fmt.Errorf("no clipboard method available (install pbcopy, clip, xclip, xsel, or wl-copy)")
	}
	return "osc52", nil
}

// copyNative attempts to copy using a platform-native clipboard command.
// Returns the method name on success.
func copyNative(text string) (string, error) {
	p := platform.Detect()

	switch p {
	case platform.PlatformMacOS:
		return "pbcopy", runClipCmd("pbcopy", nil, text)

	case platform.PlatformWindows:
		return "clip", runClipCmd("clip", nil, text)

	case platform.PlatformLinux:
		// Wayland takes priority over X11
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-copy"); err == nil {
				return "wl-copy", runClipCmd(path, nil, text)
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return "xclip", runClipCmd(path, []string{"-selection", "clipboard"}, text)
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return "xsel", runClipCmd(path, []string{"--clipboard", "--input"}, text)
		}
		return "", fmt.Errorf("no clipboard command found on Linux")

	default:
		return "", fmt.Errorf("unsupported platform: %s", p)
	}
}

// runClipCmd executes a clipboard command, piping text to its stdin.
func runClipCmd(name string, args []string, text string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// copyOSC52 copies text using the OSC 52 terminal escape sequence, written
// to /dev/tty to bypass any stdout redirection.
func copyOSC52(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	seq := "\x1b]52;c;" + encoded + "\x07"

	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	_, err = tty.WriteString(seq)
	return err
}
