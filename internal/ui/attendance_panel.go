package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/clipboard"
)

// fieldCount is the ten poll options plus the phone row.
const fieldCount = attendance.NumPollOptions + 1

// AttendanceSaver persists a finished calculation. Nil disables saving.
type AttendanceSaver func(counts attendance.Counts, total int) error

// AttendancePanel is the poll tally form. Arrow keys move between rows,
// digits edit the focused row, the total updates live.
type AttendancePanel struct {
	visible bool
	width   int
	height  int
	cursor  int
	inputs  [fieldCount]textinput.Model
	saver   AttendanceSaver
	status  string
}

// NewAttendancePanel creates the attendance form.
func NewAttendancePanel(saver AttendanceSaver) *AttendancePanel {
	p := &AttendancePanel{saver: saver}
	for i := range p.inputs {
		in := textinput.New()
		in.Placeholder = "0"
		in.CharLimit = 4
		in.Width = 5
		in.Validate = func(s string) error {
			if s == "" {
				return nil
			}
			if _, err := strconv.Atoi(s); err != nil {
				return fmt.Errorf("digits only")
			}
			return nil
		}
		p.inputs[i] = in
	}
	return p
}

// Show displays the panel with a cleared form.
func (p *AttendancePanel) Show() {
	p.visible = true
	p.cursor = 0
	p.status = ""
	for i := range p.inputs {
		p.inputs[i].SetValue("")
		p.inputs[i].Blur()
	}
	p.inputs[0].Focus()
}

// Hide hides the panel.
func (p *AttendancePanel) Hide() {
	p.visible = false
}

// IsVisible returns whether the panel is showing.
func (p *AttendancePanel) IsVisible() bool {
	return p.visible
}

// SetSize updates the panel dimensions.
func (p *AttendancePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Counts reads the current form values. Blank rows count as zero.
func (p *AttendancePanel) Counts() attendance.Counts {
	var c attendance.Counts
	for i := 0; i < attendance.NumPollOptions; i++ {
		c.Options[i] = atoiOrZero(p.inputs[i].Value())
	}
	c.Phone = atoiOrZero(p.inputs[attendance.NumPollOptions].Value())
	return c
}

// Total returns the live attendance total for the current form values.
func (p *AttendancePanel) Total() int {
	return p.Counts().Total()
}

func (p *AttendancePanel) focusRow(row int) {
	p.inputs[p.cursor].Blur()
	p.cursor = row
	p.inputs[p.cursor].Focus()
}

// Update handles key events for the panel.
func (p *AttendancePanel) Update(msg tea.Msg) (*AttendancePanel, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "shift+tab":
			p.focusRow((p.cursor - 1 + fieldCount) % fieldCount)
			return p, nil
		case "down", "tab":
			p.focusRow((p.cursor + 1) % fieldCount)
			return p, nil
		case "enter":
			p.save()
			return p, nil
		case "ctrl+y":
			p.copyTotal()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.inputs[p.cursor], cmd = p.inputs[p.cursor].Update(msg)
	return p, cmd
}

func (p *AttendancePanel) save() {
	counts := p.Counts()
	total, err := attendance.Calculate(counts)
	if err != nil {
		p.status = ErrorStyle.Render(err.Error())
		return
	}
	if p.saver != nil {
		if err := p.saver(counts, total); err != nil {
			p.status = WarningStyle.Render(fmt.Sprintf("Total %d (not saved: %s)", total, err))
			return
		}
	}
	p.status = SuccessStyle.Render(fmt.Sprintf("Attendance saved: %d", total))
}

func (p *AttendancePanel) copyTotal() {
	total := p.Total()
	if _, err := clipboard.Copy(strconv.Itoa(total)); err != nil {
		p.status = WarningStyle.Render(fmt.Sprintf("Copy failed: %s", err))
		return
	}
	p.status = SuccessStyle.Render(fmt.Sprintf("Copied total %d", total))
}

// View renders the panel.
func (p *AttendancePanel) View() string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Zoom Attendance"))
	b.WriteString("\n\n")
	b.WriteString(SubtitleStyle.Render("Poll answers per device size, plus phone participants."))
	b.WriteString("\n\n")

	for i := 0; i < attendance.NumPollOptions; i++ {
		label := fmt.Sprintf("%2d at this device", i+1)
		b.WriteString(p.renderRow(i, label))
	}
	b.WriteString(p.renderRow(attendance.NumPollOptions, " phone participants"))

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("  Total: "))
	b.WriteString(HighlightStyle.Render(fmt.Sprintf(" %d ", p.Total())))
	b.WriteString("\n")
	if p.status != "" {
		b.WriteString("\n  " + p.status + "\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(ColorComment).Render(
		strings.Join([]string{
			MenuKey("↑/↓", "row"),
			MenuKey("enter", "save"),
			MenuKey("ctrl+y", "copy total"),
			MenuKey("esc", "back"),
		}, "  ")))

	return PanelStyle.Render(b.String())
}

func (p *AttendancePanel) renderRow(row int, label string) string {
	cursor := "  "
	style := MenuDescStyle
	if row == p.cursor {
		cursor = "> "
		style = ListItemActiveStyle.UnsetPaddingLeft()
	}
	return cursor + style.Render(label) + "  " + p.inputs[row].View() + "\n"
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
