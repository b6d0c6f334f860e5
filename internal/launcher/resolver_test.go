package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

type fakePrompter struct {
	path      string
	cancelled bool
	err       error

	calls int
	tool  Tool
}

func (f *fakePrompter) PickApplication(tool Tool, defaultDir string, extensions []string) (string, bool, error) {
	f.calls++
	f.tool = tool
	return f.path, f.cancelled, f.err
}

func newTestStore(t *testing.T) *settings.Store {
	t.Helper()
	return settings.NewStore(t.TempDir())
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestResolveStoredPathWins(t *testing.T) {
	store := newTestStore(t)
	stored := filepath.Join(t.TempDir(), "obs64.exe")
	touch(t, stored)

	cfg := store.MediaConfig()
	cfg.OBSPath = stored
	require.NoError(t, store.SaveMediaConfig(cfg))

	r := NewResolver(store, platform.PlatformWindows, nil)
	path, found := r.Resolve(ToolOBS)
	assert.Equal(t, stored, path)
	assert.True(t, found)
}

func TestResolveStoredPathMissingOnDisk(t *testing.T) {
	store := newTestStore(t)
	cfg := store.ZoomConfig()
	cfg.ZoomPath = filepath.Join(t.TempDir(), "gone", "Zoom.exe")
	require.NoError(t, store.SaveZoomConfig(cfg))

	r := NewResolver(store, platform.PlatformWindows, nil)
	path, found := r.Resolve(ToolZoom)
	assert.Equal(t, cfg.ZoomPath, path)
	assert.False(t, found, "a configured path is reported even when absent")
}

func TestResolveFallsBackToDefault(t *testing.T) {
	store := newTestStore(t)

	r := NewResolver(store, platform.PlatformWindows, nil)
	path, found := r.Resolve(ToolMediaManager)
	assert.Equal(t, DefaultPath(ToolMediaManager, platform.PlatformWindows), path)
	assert.False(t, found)
}

func TestResolveUnsupportedPlatform(t *testing.T) {
	r := NewResolver(newTestStore(t), platform.PlatformLinux, nil)
	path, found := r.Resolve(ToolOBS)
	assert.Empty(t, path)
	assert.False(t, found)
}

func TestPromptAndStorePersistsSelection(t *testing.T) {
	store := newTestStore(t)
	picked := filepath.Join(t.TempDir(), "obs64.exe")
	touch(t, picked)

	prompter := &fakePrompter{path: picked}
	r := NewResolver(store, platform.PlatformWindows, prompter)

	path, err := r.PromptAndStore(ToolOBS)
	require.NoError(t, err)
	assert.Equal(t, picked, path)
	assert.Equal(t, ToolOBS, prompter.tool)

	// Subsequent resolves use the saved path without prompting again.
	resolved, found := r.Resolve(ToolOBS)
	assert.Equal(t, picked, resolved)
	assert.True(t, found)
	assert.Equal(t, 1, prompter.calls)
}

func TestPromptAndStoreCancelled(t *testing.T) {
	store := newTestStore(t)
	prompter := &fakePrompter{cancelled: true}
	r := NewResolver(store, platform.PlatformMacOS, prompter)

	path, err := r.PromptAndStore(ToolZoom)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, store.ZoomConfig().ZoomPath, "a cancelled pick must not be saved")
}

func TestPromptAndStoreNilPrompter(t *testing.T) {
	r := NewResolver(newTestStore(t), platform.PlatformMacOS, nil)
	path, err := r.PromptAndStore(ToolZoom)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestPathExistsAppBundleMustBeDirectory(t *testing.T) {
	dir := t.TempDir()

	bundle := filepath.Join(dir, "OBS.app")
	require.NoError(t, os.Mkdir(bundle, 0o755))
	assert.True(t, pathExists(bundle, platform.PlatformMacOS))

	plain := filepath.Join(dir, "fake.app")
	touch(t, plain)
	assert.False(t, pathExists(plain, platform.PlatformMacOS), "a plain file is not an application bundle")

	exe := filepath.Join(dir, "tool.exe")
	touch(t, exe)
	assert.True(t, pathExists(exe, platform.PlatformWindows))
}
