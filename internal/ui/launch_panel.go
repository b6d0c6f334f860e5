package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/advenimus/jwtools/internal/launcher"
)

// LaunchRunner starts the launch sequence. It blocks until the sequence
// finishes; the panel invokes it from a tea.Cmd goroutine.
type LaunchRunner func() (*launcher.RunResult, error)

// launchProgressMsg carries one sequencer progress event into the program.
type launchProgressMsg launcher.Progress

// launchDoneMsg carries the final outcome.
type launchDoneMsg struct {
	result *launcher.RunResult
	err    error
}

// LaunchPanel shows the live launch sequence: a progress bar, the current
// status line, and the final per-step outcomes.
type LaunchPanel struct {
	visible bool
	running bool
	width   int
	height  int

	bar      progress.Model
	percent  float64
	status   string
	result   *launcher.RunResult
	err      error
	events   <-chan launcher.Progress
	runner   LaunchRunner
}

// NewLaunchPanel creates a launch panel over a runner and its event stream.
func NewLaunchPanel(runner LaunchRunner, events <-chan launcher.Progress) *LaunchPanel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return &LaunchPanel{bar: bar, runner: runner, events: events}
}

// Show displays the panel and kicks off the sequence.
func (p *LaunchPanel) Show() tea.Cmd {
	p.visible = true
	p.running = true
	p.percent = 0
	p.status = "Starting launch sequence"
	p.result = nil
	p.err = nil
	return tea.Batch(p.runCmd(), p.waitForProgress())
}

// Hide hides the panel.
func (p *LaunchPanel) Hide() {
	p.visible = false
}

// IsVisible returns whether the panel is showing.
func (p *LaunchPanel) IsVisible() bool {
	return p.visible
}

// IsRunning reports whether a sequence is still in flight.
func (p *LaunchPanel) IsRunning() bool {
	return p.running
}

// SetSize updates the panel dimensions.
func (p *LaunchPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	barWidth := width - 12
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth > 10 {
		p.bar.Width = barWidth
	}
}

func (p *LaunchPanel) runCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := p.runner()
		return launchDoneMsg{result: result, err: err}
	}
}

func (p *LaunchPanel) waitForProgress() tea.Cmd {
	if p.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-p.events
		if !ok {
			return nil
		}
		return launchProgressMsg(ev)
	}
}

// Update handles progress and completion messages.
func (p *LaunchPanel) Update(msg tea.Msg) (*LaunchPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case launchProgressMsg:
		p.percent = msg.Percent
		p.status = msg.Status
		return p, p.waitForProgress()

	case launchDoneMsg:
		p.running = false
		p.result = msg.result
		p.err = msg.err
		if msg.result != nil && msg.result.State == launcher.StateCompleted {
			p.percent = 100
		}
		return p, nil
	}
	return p, nil
}

// View renders the panel.
func (p *LaunchPanel) View() string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Meeting Launch"))
	b.WriteString("\n\n")
	b.WriteString("  " + p.bar.ViewAs(p.percent/100))
	b.WriteString(fmt.Sprintf("  %3.0f%%\n\n", p.percent))

	switch {
	case p.err != nil:
		b.WriteString("  " + ErrorStyle.Render(p.err.Error()) + "\n")
	case p.running:
		b.WriteString("  " + InfoStyle.Render(p.status) + "\n")
	case p.result != nil:
		b.WriteString(p.renderResult())
	}

	b.WriteString("\n")
	if p.running {
		b.WriteString(DimStyle.Render("  launching..."))
	} else {
		b.WriteString(DimStyle.Render("  " + MenuKey("esc", "back")))
	}

	return PanelStyle.Render(b.String())
}

func (p *LaunchPanel) renderResult() string {
	var b strings.Builder
	for _, step := range p.result.Steps {
		indicator := StatusIndicator("failure")
		if step.Succeeded {
			indicator = StatusIndicator("success")
		}
		b.WriteString("  " + indicator + " " + step.StepName)
		if !step.Succeeded {
			b.WriteString(DimStyle.Render("  " + step.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch p.result.State {
	case launcher.StateCompleted:
		b.WriteString("  " + SuccessStyle.Render("All steps completed") + "\n")
	case launcher.StateCompletedWithErrors:
		b.WriteString("  " + WarningStyle.Render(fmt.Sprintf("Completed with errors (%s failed)", p.result.FailedStep)) + "\n")
	case launcher.StateAborted:
		b.WriteString("  " + ErrorStyle.Render("Launch aborted") + "\n")
	}
	return b.String()
}
