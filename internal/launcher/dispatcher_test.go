package launcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/platform"
)

type startCall struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	calls []startCall
	err   error
}

func (f *fakeRunner) Start(dir, name string, args ...string) error {
	f.calls = append(f.calls, startCall{dir: dir, name: name, args: args})
	return f.err
}

type fakeOpener struct {
	urls []string
	err  error
}

func (f *fakeOpener) OpenURL(url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

func TestLaunchMacOSUsesOpen(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcherWith(platform.PlatformMacOS, runner, &fakeOpener{})

	res := d.Launch(ToolMediaManager, "/Applications/Meeting Media Manager.app")
	assert.True(t, res.Success)
	assert.Equal(t, "Meeting Media Manager launched successfully", res.Message)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "open", runner.calls[0].name)
	assert.Equal(t, []string{"/Applications/Meeting Media Manager.app"}, runner.calls[0].args)
}

func TestLaunchMacOSForwardsStartupArgs(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcherWith(platform.PlatformMacOS, runner, &fakeOpener{})

	res := d.Launch(ToolOBS, "/Applications/OBS.app")
	assert.True(t, res.Success)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/Applications/OBS.app", "--args", "--startvirtualcam"}, runner.calls[0].args)
}

func TestLaunchWindowsUsesStartFromInstallDir(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcherWith(platform.PlatformWindows, runner, &fakeOpener{})

	res := d.Launch(ToolOBS, `C:\Program Files\obs-studio\bin\64bit\obs64.exe`)
	assert.True(t, res.Success)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "cmd", call.name)
	assert.Equal(t, `C:\Program Files\obs-studio\bin\64bit`, call.dir)
	assert.Equal(t, []string{
		"/c", "start", "/b", "/d", `C:\Program Files\obs-studio\bin\64bit`, "", "obs64.exe", "--startvirtualcam",
	}, call.args)
}

func TestLaunchUnsupportedPlatform(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDispatcherWith(platform.PlatformLinux, runner, &fakeOpener{})

	res := d.Launch(ToolZoom, "/usr/bin/zoom")
	assert.False(t, res.Success)
	assert.Equal(t, "Unsupported platform", res.Message)
	assert.Empty(t, runner.calls)
}

func TestLaunchSpawnFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exec format error")}
	d := NewDispatcherWith(platform.PlatformMacOS, runner, &fakeOpener{})

	res := d.Launch(ToolZoom, "/Applications/zoom.us.app")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Failed to launch Zoom")
	assert.Contains(t, res.Message, "exec format error")
}

func TestLaunchZoomOpensDeepLink(t *testing.T) {
	runner := &fakeRunner{}
	opener := &fakeOpener{}
	d := NewDispatcherWith(platform.PlatformMacOS, runner, opener)

	res := d.LaunchZoom("/Applications/zoom.us.app", "123-456-7890")
	assert.True(t, res.Success)
	assert.Equal(t, "Zoom launched with meeting ID 1234567890", res.Message)

	require.Len(t, opener.urls, 1)
	assert.Equal(t, "zoommtg://zoom.us/join?confno=1234567890", opener.urls[0])
	assert.Empty(t, runner.calls, "deep link replaces the plain executable launch")
}

func TestLaunchZoomWithoutMeetingIDFallsBackToExecutable(t *testing.T) {
	runner := &fakeRunner{}
	opener := &fakeOpener{}
	d := NewDispatcherWith(platform.PlatformWindows, runner, opener)

	res := d.LaunchZoom(`C:\Program Files\Zoom\bin\Zoom.exe`, "")
	assert.True(t, res.Success)
	assert.Equal(t, "Zoom launched successfully", res.Message)
	assert.Empty(t, opener.urls)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "cmd", runner.calls[0].name)
}

func TestLaunchZoomRejectsShortMeetingID(t *testing.T) {
	runner := &fakeRunner{}
	opener := &fakeOpener{}
	d := NewDispatcherWith(platform.PlatformMacOS, runner, opener)

	res := d.LaunchZoom("/Applications/zoom.us.app", "123 456")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Invalid meeting ID format: 123 456")

	// Validation failures launch nothing at all.
	assert.Empty(t, opener.urls)
	assert.Empty(t, runner.calls)
}

func TestLaunchZoomDeepLinkFailure(t *testing.T) {
	opener := &fakeOpener{err: errors.New("no handler registered")}
	d := NewDispatcherWith(platform.PlatformMacOS, &fakeRunner{}, opener)

	res := d.LaunchZoom("/Applications/zoom.us.app", "9876543210")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Failed to launch Zoom")
}

func TestLaunchZoomUnsupportedPlatform(t *testing.T) {
	d := NewDispatcherWith(platform.PlatformUnknown, &fakeRunner{}, &fakeOpener{})

	res := d.LaunchZoom("/somewhere/zoom", "1234567890")
	assert.False(t, res.Success)
	assert.Equal(t, "Unsupported platform", res.Message)
}
