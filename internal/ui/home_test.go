package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/onboarding"
	"github.com/advenimus/jwtools/internal/platform"
	"github.com/advenimus/jwtools/internal/settings"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	store := settings.NewStore(t.TempDir())
	return NewModel(Deps{
		Store:    store,
		Launcher: launcher.New(store, platform.PlatformLinux),
		Version:  "0.0.0-test",
	})
}

func update(m *Model, msg tea.Msg) *Model {
	next, _ := m.Update(msg)
	return next.(*Model)
}

func TestModelStartsOnMenu(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, viewMenu, m.state)

	view := m.View()
	assert.Contains(t, view, "JW Tools")
	assert.Contains(t, view, "Launch meeting")
	assert.Contains(t, view, "0.0.0-test")
}

func TestModelShowsWizardOnFirstLaunch(t *testing.T) {
	store := settings.NewStore(t.TempDir())
	ob := onboarding.New(store, platform.PlatformLinux, nil)
	m := NewModel(Deps{
		Store:      store,
		Launcher:   launcher.New(store, platform.PlatformLinux),
		Onboarding: ob,
	})

	assert.Equal(t, viewWizard, m.state)
	assert.True(t, m.wizard.IsVisible())
}

func TestModelMenuNavigation(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("down"))
	assert.Equal(t, 1, m.cursor)
	m = update(m, key("up"))
	m = update(m, key("up"))
	assert.Equal(t, len(menuItems)-1, m.cursor, "cursor wraps")
}

func TestModelOpensAndClosesAttendance(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("down")) // Attendance
	m = update(m, key("enter"))
	require.Equal(t, viewAttendance, m.state)
	assert.True(t, m.attendance.IsVisible())

	m = update(m, key("esc"))
	assert.Equal(t, viewMenu, m.state)
	assert.False(t, m.attendance.IsVisible())
}

func TestModelOpensSettings(t *testing.T) {
	m := newTestModel(t)

	m = update(m, key("down"))
	m = update(m, key("down")) // Settings
	m = update(m, key("enter"))
	assert.Equal(t, viewSettings, m.state)
	assert.Contains(t, m.View(), "Settings")
}

func TestModelQuitFromMenu(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Empty(t, next.(*Model).View())
}

func TestModelWindowSizePropagates(t *testing.T) {
	m := newTestModel(t)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30, m.height)
}
