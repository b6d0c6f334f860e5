package launcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

// Prompter is the interactive file-selection collaborator. Implementations
// live in the UI layer; the cancelled flag distinguishes "picked nothing"
// from an error in the picker itself.
type Prompter interface {
	PickApplication(tool Tool, defaultDir string, extensions []string) (path string, cancelled bool, err error)
}

// Resolver locates a tool's installation: stored path first, then the
// platform default table, then an interactive prompt.
type Resolver struct {
	store    *settings.Store
	platform platform.Platform
	prompter Prompter
}

// NewResolver creates a resolver. prompter may be nil, in which case
// PromptAndStore always reports a cancelled pick.
func NewResolver(store *settings.Store, p platform.Platform, prompter Prompter) *Resolver {
	return &Resolver{store: store, platform: p, prompter: prompter}
}

// StoredPath returns the user-configured path for a tool, empty if unset.
func (r *Resolver) StoredPath(tool Tool) string {
	switch tool {
	case ToolZoom:
		return r.store.ZoomConfig().ZoomPath
	case ToolOBS:
		return r.store.MediaConfig().OBSPath
	case ToolMediaManager:
		return r.store.MediaConfig().MediaManagerPath
	}
	return ""
}

// storePath persists a picked path into the tool's settings document.
func (r *Resolver) storePath(tool Tool, path string) error {
	switch tool {
	case ToolZoom:
		cfg := r.store.ZoomConfig()
		cfg.ZoomPath = path
		return r.store.SaveZoomConfig(cfg)
	case ToolOBS:
		cfg := r.store.MediaConfig()
		cfg.OBSPath = path
		return r.store.SaveMediaConfig(cfg)
	case ToolMediaManager:
		cfg := r.store.MediaConfig()
		cfg.MediaManagerPath = path
		return r.store.SaveMediaConfig(cfg)
	}
	return nil
}

// Resolve returns the path to launch a tool from and whether it exists on
// disk. The stored path wins over the default table; an empty stored path is
// the "use platform default" sentinel.
func (r *Resolver) Resolve(tool Tool) (string, bool) {
	if stored := r.StoredPath(tool); stored != "" {
		return stored, pathExists(stored, r.platform)
	}

	candidates := defaultPathCandidates(tool, r.platform)
	for _, c := range candidates {
		if pathExists(c, r.platform) {
			return c, true
		}
	}
	if len(candidates) > 0 {
		return candidates[0], false
	}
	return "", false
}

// PromptAndStore asks the user to locate a tool and persists a non-cancelled
// selection. Returns an empty path when the user cancels.
func (r *Resolver) PromptAndStore(tool Tool) (string, error) {
	if r.prompter == nil {
		return "", nil
	}

	defaultDir := filepath.Dir(DefaultPath(tool, r.platform))
	if !pathExists(defaultDir, r.platform) {
		if home, err := os.UserHomeDir(); err == nil {
			defaultDir = home
		}
	}

	path, cancelled, err := r.prompter.PickApplication(tool, defaultDir, platform.ExecutableExtensions(r.platform))
	if err != nil {
		return "", err
	}
	if cancelled || path == "" {
		return "", nil
	}

	if err := r.storePath(tool, path); err != nil {
		launcherLog.Warn("tool_path_save_failed",
			slog.String("tool", string(tool)), slog.String("error", err.Error()))
	}
	return path, nil
}

// pathExists tests whether a tool path is present. On macOS an application
// is a .app bundle, which is a directory, not a plain file.
func pathExists(path string, p platform.Platform) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if p == platform.PlatformMacOS && strings.HasSuffix(path, ".app") {
		return info.IsDir()
	}
	return true
}
