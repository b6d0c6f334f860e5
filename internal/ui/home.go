package ui

import (
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/onboarding"
	"github.com/advenimus/jwtools/internal/settings"
)

// view states
type viewState int

const (
	viewMenu viewState = iota
	viewWizard
	viewLaunch
	viewAttendance
	viewSettings
)

// menu entries in display order
var menuItems = []struct {
	title string
	desc  string
}{
	{"Launch meeting", "Start OBS, Meeting Media Manager and Zoom"},
	{"Attendance", "Count attendance from a Zoom poll"},
	{"Settings", "Tool toggles, custom message, paths"},
	{"Quit", "Exit JW Tools"},
}

// themeChangedMsg signals an OS dark mode flip.
type themeChangedMsg bool

// settingsChangedMsg signals an on-disk settings edit.
type settingsChangedMsg struct{}

// Deps wires the model to the application services.
type Deps struct {
	Store      *settings.Store
	Launcher   *launcher.Launcher
	Onboarding *onboarding.Manager
	Events     <-chan launcher.Progress

	// SaveAttendance persists a calculation; nil disables history.
	SaveAttendance AttendanceSaver

	// RecordLaunch persists a finished run; nil disables history.
	RecordLaunch func(*launcher.RunResult)

	// Watcher delivers settings reload signals; nil disables live reload.
	Watcher *settings.Watcher

	// ThemeWatcher delivers OS dark mode changes; nil disables live theme.
	ThemeWatcher *ThemeWatcher

	Version string
}

// Model is the root bubbletea model.
type Model struct {
	deps   Deps
	state  viewState
	cursor int
	width  int
	height int

	wizard     *SetupWizard
	launch     *LaunchPanel
	attendance *AttendancePanel
	settings   *SettingsPanel

	quitting bool
}

// NewModel builds the root model. When onboarding is needed the wizard is
// the first thing shown.
func NewModel(deps Deps) *Model {
	m := &Model{
		deps:       deps,
		wizard:     NewSetupWizard(),
		attendance: NewAttendancePanel(deps.SaveAttendance),
		settings:   NewSettingsPanel(deps.Store, deps.Launcher.Resolver()),
	}
	m.launch = NewLaunchPanel(m.runLaunch, deps.Events)

	if deps.Onboarding != nil && deps.Onboarding.NeedsOnboarding() {
		m.state = viewWizard
		m.wizard.Show()
	}
	return m
}

func (m *Model) runLaunch() (*launcher.RunResult, error) {
	result, err := m.deps.Launcher.Run()
	if err == nil && result != nil && m.deps.RecordLaunch != nil {
		m.deps.RecordLaunch(result)
	}
	return result, err
}

// Init starts the background watchers.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForTheme(), m.waitForSettings())
}

func (m *Model) waitForTheme() tea.Cmd {
	if m.deps.ThemeWatcher == nil {
		return nil
	}
	return func() tea.Msg {
		isDark, ok := <-m.deps.ThemeWatcher.ChangeChannel()
		if !ok {
			return nil
		}
		return themeChangedMsg(isDark)
	}
}

func (m *Model) waitForSettings() tea.Cmd {
	if m.deps.Watcher == nil {
		return nil
	}
	return func() tea.Msg {
		_, ok := <-m.deps.Watcher.ReloadChannel()
		if !ok {
			return nil
		}
		return settingsChangedMsg{}
	}
}

// Update is the root message handler.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.wizard.SetSize(msg.Width, msg.Height)
		m.launch.SetSize(msg.Width, msg.Height)
		m.attendance.SetSize(msg.Width, msg.Height)
		m.settings.SetSize(msg.Width, msg.Height)
		return m, nil

	case themeChangedMsg:
		if bool(msg) {
			InitTheme("dark")
		} else {
			InitTheme("light")
		}
		return m, m.waitForTheme()

	case settingsChangedMsg:
		m.settings.Reload()
		uiLog.Info("settings_reloaded")
		return m, m.waitForSettings()

	case launchProgressMsg, launchDoneMsg:
		var cmd tea.Cmd
		m.launch, cmd = m.launch.Update(msg)
		return m, cmd
	}

	switch m.state {
	case viewWizard:
		return m.updateWizard(msg)
	case viewLaunch:
		return m.updateLaunch(msg)
	case viewAttendance:
		return m.updateAttendance(msg)
	case viewSettings:
		return m.updateSettings(msg)
	default:
		return m.updateMenu(msg)
	}
}

// backToMenu handles the keys shared by every sub-panel. It reports whether
// the message was consumed.
func (m *Model) backToMenu(msg tea.Msg, hide func()) (bool, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch key.String() {
	case "esc":
		hide()
		m.state = viewMenu
		return true, nil
	case "ctrl+c":
		m.quitting = true
		return true, tea.Quit
	}
	return false, nil
}

func (m *Model) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.wizard, cmd = m.wizard.Update(msg)
	if m.wizard.IsComplete() {
		m.wizard.Hide()
		m.state = viewMenu
		if m.deps.Onboarding != nil {
			if err := m.deps.Onboarding.Apply(m.wizard.GetAnswers()); err != nil {
				uiLog.Error("onboarding_apply_failed", slog.String("error", err.Error()))
			}
		}
	}
	return m, cmd
}

func (m *Model) updateLaunch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			if !m.launch.IsRunning() {
				m.launch.Hide()
				m.state = viewMenu
			}
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.launch, cmd = m.launch.Update(msg)
	return m, cmd
}

func (m *Model) updateAttendance(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handled, cmd := m.backToMenu(msg, m.attendance.Hide); handled {
		return m, cmd
	}
	var cmd tea.Cmd
	m.attendance, cmd = m.attendance.Update(msg)
	return m, cmd
}

func (m *Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handled, cmd := m.backToMenu(msg, m.settings.Hide); handled {
		return m, cmd
	}
	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(msg)
	return m, cmd
}

func (m *Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.cursor = (m.cursor - 1 + len(menuItems)) % len(menuItems)

	case "down", "j":
		m.cursor = (m.cursor + 1) % len(menuItems)

	case "enter":
		return m.selectMenuItem()
	}
	return m, nil
}

func (m *Model) selectMenuItem() (tea.Model, tea.Cmd) {
	switch m.cursor {
	case 0:
		m.state = viewLaunch
		return m, m.launch.Show()
	case 1:
		m.state = viewAttendance
		m.attendance.Show()
	case 2:
		m.state = viewSettings
		m.settings.Show()
	case 3:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the active view.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case viewWizard:
		return m.wizard.View()
	case viewLaunch:
		return m.centered(m.launch.View())
	case viewAttendance:
		return m.centered(m.attendance.View())
	case viewSettings:
		return m.centered(m.settings.View())
	default:
		return m.menuView()
	}
}

func (m *Model) centered(content string) string {
	if m.width == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) menuView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("JW Tools"))
	if m.deps.Version != "" {
		b.WriteString(" " + DimStyle.Render("v"+m.deps.Version))
	}
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(time.Now().Format("Monday, January 2")))
	b.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.cursor {
			b.WriteString("> " + HighlightStyle.Render(" "+item.title+" "))
		} else {
			b.WriteString("  " + MenuDescStyle.Render(item.title))
		}
		b.WriteString("  " + DimStyle.Render(item.desc) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render(strings.Join([]string{
		MenuKey("↑/↓", "navigate"),
		MenuKey("enter", "select"),
		MenuKey("q", "quit"),
	}, "  ")))

	return m.centered(PanelStyle.Render(b.String()))
}
