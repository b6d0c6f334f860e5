package onboarding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

type fakeAutostart struct {
	enabled bool
	err     error
}

func (f *fakeAutostart) Enable() error {
	if f.err != nil {
		return f.err
	}
	f.enabled = true
	return nil
}

func newManager(t *testing.T) (*Manager, *settings.Store, *fakeAutostart) {
	t.Helper()
	store := settings.NewStore(t.TempDir())
	auto := &fakeAutostart{}
	return New(store, platform.PlatformMacOS, auto), store, auto
}

func TestFirstLaunchDetection(t *testing.T) {
	m, store, _ := newManager(t)

	assert.True(t, m.IsFirstLaunch())
	assert.True(t, m.NeedsOnboarding())

	require.NoError(t, store.SaveAppSettings(settings.DefaultAppSettings()))
	assert.False(t, m.IsFirstLaunch())
	assert.False(t, m.NeedsOnboarding())
}

func TestMarkerLifecycle(t *testing.T) {
	m, _, _ := newManager(t)

	assert.False(t, m.IsComplete())
	require.NoError(t, m.MarkComplete())
	assert.True(t, m.IsComplete())

	require.NoError(t, m.ResetStatus())
	assert.False(t, m.IsComplete())
	require.NoError(t, m.ResetStatus(), "resetting twice is not an error")
}

func TestApplyZoomHostWithReminder(t *testing.T) {
	m, store, auto := newManager(t)

	err := m.Apply(Answers{
		MeetingID:       "123-456-7890",
		PCPurpose:       PurposeZoomHost,
		UseOBS:          true,
		UseMediaManager: true,
		UseReminder:     true,
		AutoLaunch:      true,
	})
	require.NoError(t, err)

	uni := store.UniversalSettings()
	assert.Equal(t, "123-456-7890", uni.MeetingID)
	assert.Equal(t, "tuesday", uni.MeetingSchedule.Midweek.Day)
	assert.Equal(t, "10:00", uni.MeetingSchedule.Weekend.Time)

	media := store.MediaConfig()
	assert.True(t, media.ToolToggles.LaunchOBS)
	assert.True(t, media.ToolToggles.LaunchMediaManager)
	assert.True(t, media.ToolToggles.LaunchZoom)
	assert.True(t, media.CustomMessage.Enabled)
	assert.Equal(t, settings.DisplayWeekend, media.CustomMessage.DisplayWhen)
	assert.Equal(t, "Pre-Meeting Checklist", media.CustomMessage.Title)
	assert.Equal(t, 5, media.CustomMessage.DisplayTime)

	app := store.AppSettings()
	assert.Equal(t, settings.ToolMediaLauncher, app.DefaultTool)
	assert.True(t, app.RunAtLogon)
	assert.True(t, app.AlwaysMaximize)

	assert.True(t, auto.enabled)
	assert.True(t, m.IsComplete())
}

func TestApplyZoomAttendant(t *testing.T) {
	m, store, auto := newManager(t)

	err := m.Apply(Answers{PCPurpose: PurposeZoomAttendant})
	require.NoError(t, err)

	media := store.MediaConfig()
	assert.False(t, media.ToolToggles.LaunchOBS)
	assert.False(t, media.ToolToggles.LaunchMediaManager)
	assert.True(t, media.ToolToggles.LaunchZoom, "Zoom stays enabled so the toggle invariant holds")
	assert.False(t, media.CustomMessage.Enabled)

	app := store.AppSettings()
	assert.Equal(t, settings.ToolStartZoom, app.DefaultTool)
	assert.False(t, app.RunAtLogon)
	assert.False(t, auto.enabled)
}

func TestApplyOtherPurposeDefaultsToWelcomeScreen(t *testing.T) {
	m, store, _ := newManager(t)

	require.NoError(t, m.Apply(Answers{PCPurpose: PurposeOther}))
	assert.Equal(t, settings.ToolWelcomeScreen, store.AppSettings().DefaultTool)
}

func TestApplySurvivesAutostartFailure(t *testing.T) {
	store := settings.NewStore(t.TempDir())
	auto := &fakeAutostart{err: errors.New("registry locked")}
	m := New(store, platform.PlatformWindows, auto)

	err := m.Apply(Answers{PCPurpose: PurposeZoomHost, AutoLaunch: true})
	require.NoError(t, err)
	assert.True(t, m.IsComplete())
}

func TestCheckApplicationPathsReportsMissing(t *testing.T) {
	m, _, _ := newManager(t)

	// The default macOS install paths do not exist on the test host, so
	// every tool in use shows up as missing.
	missing := m.CheckApplicationPaths(Answers{UseOBS: true, UseMediaManager: true})
	require.Len(t, missing, 3)
	assert.Equal(t, "Zoom", missing[0].App)
	assert.Equal(t, "/Applications/zoom.us.app", missing[0].DefaultPath)

	missing = m.CheckApplicationPaths(Answers{})
	require.Len(t, missing, 1, "only Zoom is checked when OBS and Media Manager are not in use")
}

func TestCheckApplicationPathsUnsupportedPlatform(t *testing.T) {
	store := settings.NewStore(t.TempDir())
	m := New(store, platform.PlatformLinux, nil)

	missing := m.CheckApplicationPaths(Answers{UseOBS: true, UseMediaManager: true})
	assert.Empty(t, missing)
}
