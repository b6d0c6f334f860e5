package launcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

type recordedMessage struct {
	title    string
	message  string
	duration time.Duration
}

type fakeDisplay struct {
	shown []recordedMessage
}

func (f *fakeDisplay) Show(title, message string, duration time.Duration) {
	f.shown = append(f.shown, recordedMessage{title, message, duration})
}

// launcherFixture builds a Launcher over a temp store with every external
// effect faked out: installed tools are plain files in a temp dir, commands
// are recorded instead of spawned, and sleeps are collected.
type launcherFixture struct {
	store   *settings.Store
	runner  *fakeRunner
	opener  *fakeOpener
	display *fakeDisplay
	slept   []time.Duration
	now     time.Time
}

func newLauncherFixture(t *testing.T) (*launcherFixture, *Launcher) {
	t.Helper()

	f := &launcherFixture{
		store:   settings.NewStore(t.TempDir()),
		runner:  &fakeRunner{},
		opener:  &fakeOpener{},
		display: &fakeDisplay{},
		now:     time.Date(2024, time.January, 2, 19, 0, 0, 0, time.UTC), // a Tuesday
	}

	// Point every tool at a file that exists so resolution never prompts.
	toolDir := t.TempDir()
	obs := filepath.Join(toolDir, "obs64.exe")
	mm := filepath.Join(toolDir, "mmm.exe")
	zoom := filepath.Join(toolDir, "Zoom.exe")
	for _, p := range []string{obs, mm, zoom} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	media := f.store.MediaConfig()
	media.OBSPath = obs
	media.MediaManagerPath = mm
	require.NoError(t, f.store.SaveMediaConfig(media))

	zc := f.store.ZoomConfig()
	zc.ZoomPath = zoom
	require.NoError(t, f.store.SaveZoomConfig(zc))

	l := New(f.store, platform.PlatformWindows,
		WithDispatcher(NewDispatcherWith(platform.PlatformWindows, f.runner, f.opener)),
		WithMessageDisplay(f.display),
		WithClock(func() time.Time { return f.now }, func(d time.Duration) { f.slept = append(f.slept, d) }),
	)
	return f, l
}

func TestLauncherRunAllTools(t *testing.T) {
	f, l := newLauncherFixture(t)

	uni := f.store.UniversalSettings()
	uni.MeetingID = "123-456-7890"
	require.NoError(t, f.store.SaveUniversalSettings(uni))

	result, err := l.Run()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, "OBS Studio", result.Steps[0].StepName)
	assert.Equal(t, "Meeting Media Manager", result.Steps[1].StepName)
	assert.Equal(t, "Zoom", result.Steps[2].StepName)

	// OBS and Media Manager spawn executables; Zoom goes out as a deep link.
	require.Len(t, f.runner.calls, 2)
	require.Len(t, f.opener.urls, 1)
	assert.Equal(t, "zoommtg://zoom.us/join?confno=1234567890", f.opener.urls[0])

	// OBS gets its settle delay before the next step.
	assert.Contains(t, f.slept, obsSettleDelay)
	assert.Empty(t, f.display.shown)
}

func TestLauncherRunRespectsToggles(t *testing.T) {
	f, l := newLauncherFixture(t)

	media := f.store.MediaConfig()
	media.ToolToggles = settings.ToolToggles{LaunchZoom: true}
	require.NoError(t, f.store.SaveMediaConfig(media))

	uni := f.store.UniversalSettings()
	uni.MeetingID = "9876543210"
	require.NoError(t, f.store.SaveUniversalSettings(uni))

	result, err := l.Run()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "Zoom", result.Steps[0].StepName)

	// Neither OBS nor Media Manager spawns; Zoom joins via the deep link.
	assert.Empty(t, f.runner.calls)
	require.Len(t, f.opener.urls, 1)
}

func TestLauncherRunRejectsAllTogglesOff(t *testing.T) {
	f, l := newLauncherFixture(t)

	// Saves enforce the invariant, so write the document directly to
	// simulate external editing.
	require.NoError(t, os.WriteFile(
		filepath.Join(f.store.Dir(), settings.MediaConfigFile),
		[]byte(`{"toolToggles":{"launchOBS":false,"launchMediaManager":false,"launchZoom":false}}`),
		0o600,
	))

	result, runErr := l.Run()
	assert.ErrorIs(t, runErr, settings.ErrNoToolEnabled)
	assert.Nil(t, result)
	assert.Empty(t, f.runner.calls)
	assert.Empty(t, f.opener.urls)
}

func TestLauncherRunShowsCustomMessage(t *testing.T) {
	f, l := newLauncherFixture(t)

	media := f.store.MediaConfig()
	media.CustomMessage.Enabled = true
	media.CustomMessage.DisplayWhen = settings.DisplayAlways
	media.CustomMessage.Title = "Welcome"
	media.CustomMessage.Message = "Starting soon"
	media.CustomMessage.DisplayTime = 7
	require.NoError(t, f.store.SaveMediaConfig(media))

	result, err := l.Run()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)

	require.Len(t, result.Steps, 4)
	assert.Equal(t, messageStepName, result.Steps[0].StepName)

	require.Len(t, f.display.shown, 1)
	assert.Equal(t, "Welcome", f.display.shown[0].title)
	assert.Equal(t, "Starting soon", f.display.shown[0].message)

	// The launcher's own timer paces the step, not the presenter.
	assert.Contains(t, f.slept, 7*time.Second)
}

func TestLauncherRunWeekendMessageOnWeekday(t *testing.T) {
	f, l := newLauncherFixture(t)

	media := f.store.MediaConfig()
	media.CustomMessage.Enabled = true
	media.CustomMessage.DisplayWhen = settings.DisplayWeekend
	require.NoError(t, f.store.SaveMediaConfig(media))

	// Fixture clock is a Tuesday; the default weekend day is Sunday.
	result, err := l.Run()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	require.Len(t, result.Steps, 3)
	assert.Empty(t, f.display.shown)
}

func TestLauncherRunHaltsAfterFailedStep(t *testing.T) {
	f, l := newLauncherFixture(t)

	// Break Media Manager resolution: point it at a missing path. With no
	// prompter configured, the step fails.
	media := f.store.MediaConfig()
	media.MediaManagerPath = ""
	require.NoError(t, f.store.SaveMediaConfig(media))

	result, err := l.Run()
	require.NoError(t, err)
	assert.Equal(t, StateCompletedWithErrors, result.State)
	assert.Equal(t, "Meeting Media Manager", result.FailedStep)

	require.Len(t, result.Steps, 2)
	assert.True(t, result.Steps[0].Succeeded)
	assert.False(t, result.Steps[1].Succeeded)
	assert.Contains(t, result.Steps[1].Message, "Meeting Media Manager not found")

	// Zoom never launches after the failure.
	assert.Empty(t, f.opener.urls)
	require.Len(t, f.runner.calls, 1)
}

// enableBlockingMessage turns on an always-shown custom message so the
// first step parks in the launcher's sleep until the test releases it.
func enableBlockingMessage(t *testing.T, store *settings.Store) {
	t.Helper()
	media := store.MediaConfig()
	media.CustomMessage.Enabled = true
	media.CustomMessage.DisplayWhen = settings.DisplayAlways
	media.CustomMessage.DisplayTime = 1
	require.NoError(t, store.SaveMediaConfig(media))
}

func TestLauncherRejectsSecondRunWhileInFlight(t *testing.T) {
	f, _ := newLauncherFixture(t)
	enableBlockingMessage(t, f.store)

	stepStarted := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	blockingSleep := func(time.Duration) {
		once.Do(func() {
			close(stepStarted)
			<-release
		})
	}

	l := New(f.store, platform.PlatformWindows,
		WithDispatcher(NewDispatcherWith(platform.PlatformWindows, f.runner, f.opener)),
		WithMessageDisplay(f.display),
		WithClock(func() time.Time { return f.now }, blockingSleep),
	)

	type outcome struct {
		result *RunResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := l.Run()
		done <- outcome{result, err}
	}()

	<-stepStarted
	assert.True(t, l.Running())

	result, err := l.Run()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, result)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, StateCompleted, first.result.State)
	assert.False(t, l.Running())
}

func TestLauncherRunGuardUnderContention(t *testing.T) {
	f, _ := newLauncherFixture(t)
	enableBlockingMessage(t, f.store)

	// The winning caller parks in its first sleep; every other caller must
	// bounce off the guard while it is held.
	release := make(chan struct{})
	l := New(f.store, platform.PlatformWindows,
		WithDispatcher(NewDispatcherWith(platform.PlatformWindows, f.runner, f.opener)),
		WithMessageDisplay(f.display),
		WithClock(func() time.Time { return f.now }, func(time.Duration) { <-release }),
	)

	const callers = 8
	start := make(chan struct{})
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := l.Run()
			errs <- err
		}()
	}
	close(start)

	for i := 0; i < callers-1; i++ {
		assert.ErrorIs(t, <-errs, ErrAlreadyRunning)
	}

	close(release)
	wg.Wait()
	assert.NoError(t, <-errs)

	// Exactly one sequence ran: one deep link, two spawned tools.
	assert.Len(t, f.opener.urls, 1)
	assert.Len(t, f.runner.calls, 2)
}

func TestLauncherPromptsForMissingTool(t *testing.T) {
	f, _ := newLauncherFixture(t)

	picked := filepath.Join(t.TempDir(), "mmm.exe")
	require.NoError(t, os.WriteFile(picked, []byte("x"), 0o644))

	media := f.store.MediaConfig()
	media.MediaManagerPath = ""
	require.NoError(t, f.store.SaveMediaConfig(media))

	prompter := &fakePrompter{path: picked}
	l := New(f.store, platform.PlatformWindows,
		WithDispatcher(NewDispatcherWith(platform.PlatformWindows, f.runner, f.opener)),
		WithPrompter(prompter),
		WithClock(func() time.Time { return f.now }, func(d time.Duration) {}),
	)

	result, err := l.Run()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 1, prompter.calls)
	assert.Equal(t, ToolMediaManager, prompter.tool)

	// The pick is persisted for the next run.
	assert.Equal(t, picked, f.store.MediaConfig().MediaManagerPath)
}
