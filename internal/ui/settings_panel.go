package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/settings"
)

// SettingsPanel shows the current settings documents and allows the common
// edits: tool toggles and the custom message mode. Paths and schedule are
// edited through the wizard or the files themselves.
type SettingsPanel struct {
	visible bool
	width   int
	height  int
	cursor  int

	store    *settings.Store
	resolver *launcher.Resolver
	snapshot settings.Snapshot
	status   string
}

// Toggle rows in display order.
const (
	rowLaunchOBS = iota
	rowLaunchMediaManager
	rowLaunchZoom
	rowMessageMode
	settingsRowCount
)

var displayModes = []string{settings.DisplayNever, settings.DisplayAlways, settings.DisplayWeekend}

// NewSettingsPanel creates a settings panel over a store.
func NewSettingsPanel(store *settings.Store, resolver *launcher.Resolver) *SettingsPanel {
	return &SettingsPanel{store: store, resolver: resolver}
}

// Show displays the panel with a fresh snapshot.
func (s *SettingsPanel) Show() {
	s.visible = true
	s.cursor = 0
	s.status = ""
	s.Reload()
}

// Hide hides the panel.
func (s *SettingsPanel) Hide() {
	s.visible = false
}

// IsVisible returns whether the panel is showing.
func (s *SettingsPanel) IsVisible() bool {
	return s.visible
}

// SetSize updates the panel dimensions.
func (s *SettingsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Reload re-reads the settings documents, e.g. after a watcher signal.
func (s *SettingsPanel) Reload() {
	s.snapshot = s.store.Load()
}

// Update handles key events for the panel.
func (s *SettingsPanel) Update(msg tea.Msg) (*SettingsPanel, tea.Cmd) {
	if !s.visible {
		return s, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.cursor = (s.cursor - 1 + settingsRowCount) % settingsRowCount
		case "down", "j":
			s.cursor = (s.cursor + 1) % settingsRowCount
		case " ", "enter":
			s.toggleCurrent()
		}
	}
	return s, nil
}

func (s *SettingsPanel) toggleCurrent() {
	s.status = ""
	switch s.cursor {
	case rowLaunchOBS, rowLaunchMediaManager, rowLaunchZoom:
		toggles := s.snapshot.Media.ToolToggles
		switch s.cursor {
		case rowLaunchOBS:
			toggles.LaunchOBS = !toggles.LaunchOBS
		case rowLaunchMediaManager:
			toggles.LaunchMediaManager = !toggles.LaunchMediaManager
		case rowLaunchZoom:
			toggles.LaunchZoom = !toggles.LaunchZoom
		}
		if err := s.store.SaveToolToggles(toggles); err != nil {
			s.status = ErrorStyle.Render(err.Error())
			return
		}
	case rowMessageMode:
		media := s.snapshot.Media
		media.CustomMessage.DisplayWhen = nextDisplayMode(media.CustomMessage.DisplayWhen)
		media.CustomMessage.Enabled = media.CustomMessage.DisplayWhen != settings.DisplayNever
		if err := s.store.SaveMediaConfig(media); err != nil {
			s.status = ErrorStyle.Render(err.Error())
			return
		}
	}
	s.Reload()
}

func nextDisplayMode(current string) string {
	for i, mode := range displayModes {
		if mode == current {
			return displayModes[(i+1)%len(displayModes)]
		}
	}
	return displayModes[0]
}

// View renders the panel.
func (s *SettingsPanel) View() string {
	if !s.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	toggles := s.snapshot.Media.ToolToggles
	b.WriteString(s.renderToggleRow(rowLaunchOBS, IconOBS+" Launch OBS Studio", toggles.LaunchOBS))
	b.WriteString(s.renderToggleRow(rowLaunchMediaManager, IconMediaManager+" Launch Meeting Media Manager", toggles.LaunchMediaManager))
	b.WriteString(s.renderToggleRow(rowLaunchZoom, IconZoom+" Launch Zoom", toggles.LaunchZoom))

	cursor := "  "
	style := MenuDescStyle
	if s.cursor == rowMessageMode {
		cursor = "> "
		style = ListItemActiveStyle.UnsetPaddingLeft()
	}
	b.WriteString(cursor + style.Render(IconMessage+" Custom message: "))
	b.WriteString(HighlightStyle.Render(" " + s.snapshot.Media.CustomMessage.DisplayWhen + " "))
	b.WriteString("\n\n")

	b.WriteString(s.renderInfoLines())

	if s.status != "" {
		b.WriteString("\n  " + s.status + "\n")
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("  " + strings.Join([]string{
		MenuKey("↑/↓", "row"),
		MenuKey("space", "toggle"),
		MenuKey("esc", "back"),
	}, "  ")))

	return PanelStyle.Render(b.String())
}

func (s *SettingsPanel) renderToggleRow(row int, label string, on bool) string {
	cursor := "  "
	style := MenuDescStyle
	if s.cursor == row {
		cursor = "> "
		style = ListItemActiveStyle.UnsetPaddingLeft()
	}
	check := DimStyle.Render("[ ]")
	if on {
		check = SuccessStyle.Render("[x]")
	}
	return cursor + check + " " + style.Render(label) + "\n"
}

func (s *SettingsPanel) renderInfoLines() string {
	labelWidth := s.width - 20
	if labelWidth < 24 {
		labelWidth = 24
	}

	var b strings.Builder
	meetingID := s.snapshot.Universal.MeetingID
	if meetingID == "" {
		meetingID = "(not set)"
	}
	b.WriteString(InfoStyle.Render("  Meeting ID:  ") + Truncate(meetingID, labelWidth) + "\n")

	sched := s.snapshot.Universal.MeetingSchedule
	b.WriteString(InfoStyle.Render("  Midweek:     ") + sched.Midweek.Day + " " + sched.Midweek.Time + "\n")
	b.WriteString(InfoStyle.Render("  Weekend:     ") + sched.Weekend.Day + " " + sched.Weekend.Time + "\n")

	if s.resolver != nil {
		for _, tool := range []launcher.Tool{launcher.ToolZoom, launcher.ToolOBS, launcher.ToolMediaManager} {
			path, found := s.resolver.Resolve(tool)
			line := fmt.Sprintf("  %-13s", tool.DisplayName()+":")
			marker := SuccessStyle.Render("✓ ")
			if !found {
				marker = WarningStyle.Render("? ")
			}
			b.WriteString(InfoStyle.Render(line) + marker + DimStyle.Render(Truncate(path, labelWidth)) + "\n")
		}
	}
	return b.String()
}
