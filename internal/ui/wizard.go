package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/advenimus/jwtools/internal/onboarding"
	"github.com/advenimus/jwtools/internal/settings"
)

// SetupWizard is the first-launch dialog. It walks through the questions the
// onboarding flow needs and hands back an onboarding.Answers.
type SetupWizard struct {
	visible     bool
	complete    bool
	currentStep int
	width       int
	height      int

	// Step: PC purpose
	purposeOptions  []string
	selectedPurpose int

	// Step: meeting identity
	meetingIDInput textinput.Model

	// Step: schedule
	midweekDay      int
	weekendDay      int
	scheduleCursor  int // 0=midweek, 1=weekend
	midweekOptions  []string
	weekendOptions  []string

	// Step: tools
	useOBS          bool
	useMediaManager bool
	useReminder     bool
	autoLaunch      bool
	toolsCursor     int
}

// Wizard steps
const (
	stepWelcome   = 0
	stepPurpose   = 1
	stepMeetingID = 2
	stepSchedule  = 3
	stepTools     = 4
	stepReady     = 5
)

var purposeLabels = map[string]string{
	onboarding.PurposeZoomHost:      "Zoom host - runs the meeting, OBS and media",
	onboarding.PurposeZoomAttendant: "Zoom attendant - joins and manages attendees",
	onboarding.PurposeOther:         "Other - general congregation PC",
}

// NewSetupWizard creates a new setup wizard
func NewSetupWizard() *SetupWizard {
	idInput := textinput.New()
	idInput.Placeholder = "123 4567 8901"
	idInput.CharLimit = 32
	idInput.Width = 24

	return &SetupWizard{
		purposeOptions: []string{
			onboarding.PurposeZoomHost,
			onboarding.PurposeZoomAttendant,
			onboarding.PurposeOther,
		},
		meetingIDInput: idInput,
		midweekOptions: []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		weekendOptions: []string{"saturday", "sunday"},
		midweekDay:     1, // tuesday
		weekendDay:     1, // sunday
	}
}

// Show makes the wizard visible
func (w *SetupWizard) Show() {
	w.visible = true
	w.complete = false
	w.currentStep = stepWelcome
}

// Hide hides the wizard
func (w *SetupWizard) Hide() {
	w.visible = false
}

// IsVisible returns whether the wizard is visible
func (w *SetupWizard) IsVisible() bool {
	return w.visible
}

// IsComplete returns whether the wizard has been completed
func (w *SetupWizard) IsComplete() bool {
	return w.complete
}

// SetSize updates the wizard dimensions
func (w *SetupWizard) SetSize(width, height int) {
	w.width = width
	w.height = height
}

func (w *SetupWizard) nextStep() {
	if w.currentStep < stepReady {
		w.currentStep++
		if w.currentStep == stepMeetingID {
			w.meetingIDInput.Focus()
		} else {
			w.meetingIDInput.Blur()
		}
	}
}

func (w *SetupWizard) prevStep() {
	if w.currentStep > stepWelcome {
		w.currentStep--
		if w.currentStep == stepMeetingID {
			w.meetingIDInput.Focus()
		} else {
			w.meetingIDInput.Blur()
		}
	}
}

// GetAnswers returns the onboarding answers from the wizard selections.
func (w *SetupWizard) GetAnswers() onboarding.Answers {
	return onboarding.Answers{
		MeetingID:       strings.TrimSpace(w.meetingIDInput.Value()),
		MidweekDay:      w.midweekOptions[w.midweekDay],
		WeekendDay:      w.weekendOptions[w.weekendDay],
		PCPurpose:       w.purposeOptions[w.selectedPurpose],
		UseOBS:          w.useOBS,
		UseMediaManager: w.useMediaManager,
		UseReminder:     w.useReminder,
		AutoLaunch:      w.autoLaunch,
	}
}

// Update handles key events for the wizard
func (w *SetupWizard) Update(msg tea.Msg) (*SetupWizard, tea.Cmd) {
	if !w.visible {
		return w, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if w.currentStep == stepReady {
				w.complete = true
				return w, nil
			}
			w.nextStep()
			return w, nil

		case "esc":
			w.prevStep()
			return w, nil

		case "up", "k":
			switch w.currentStep {
			case stepPurpose:
				w.selectedPurpose--
				if w.selectedPurpose < 0 {
					w.selectedPurpose = len(w.purposeOptions) - 1
				}
			case stepSchedule:
				w.cycleScheduleDay(-1)
			case stepTools:
				w.toolsCursor--
				if w.toolsCursor < 0 {
					w.toolsCursor = w.toolsCount() - 1
				}
			}
			if w.currentStep != stepMeetingID {
				return w, nil
			}

		case "down", "j":
			switch w.currentStep {
			case stepPurpose:
				w.selectedPurpose = (w.selectedPurpose + 1) % len(w.purposeOptions)
			case stepSchedule:
				w.cycleScheduleDay(1)
			case stepTools:
				w.toolsCursor = (w.toolsCursor + 1) % w.toolsCount()
			}
			if w.currentStep != stepMeetingID {
				return w, nil
			}

		case "tab":
			if w.currentStep == stepSchedule {
				w.scheduleCursor = (w.scheduleCursor + 1) % 2
				return w, nil
			}

		case " ":
			if w.currentStep == stepTools {
				switch w.toolsCursor {
				case 0:
					w.useOBS = !w.useOBS
				case 1:
					w.useMediaManager = !w.useMediaManager
				case 2:
					w.useReminder = !w.useReminder
				case 3:
					w.autoLaunch = !w.autoLaunch
				}
				return w, nil
			}
		}

		if w.currentStep == stepMeetingID {
			w.meetingIDInput, cmd = w.meetingIDInput.Update(msg)
			return w, cmd
		}
	}

	return w, nil
}

// toolsCount returns the number of toggles on the tools step. The reminder
// toggle only applies to Zoom host PCs.
func (w *SetupWizard) toolsCount() int {
	if w.purposeOptions[w.selectedPurpose] == onboarding.PurposeZoomHost {
		return 4
	}
	return 3
}

func (w *SetupWizard) cycleScheduleDay(delta int) {
	if w.scheduleCursor == 0 {
		w.midweekDay = (w.midweekDay + delta + len(w.midweekOptions)) % len(w.midweekOptions)
	} else {
		w.weekendDay = (w.weekendDay + delta + len(w.weekendOptions)) % len(w.weekendOptions)
	}
}

// View renders the wizard dialog
func (w *SetupWizard) View() string {
	if !w.visible {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Foreground(ColorText)
	selectedStyle := lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorAccent).
		Bold(true).
		Padding(0, 1)
	unselectedStyle := lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)
	checkboxOn := SuccessStyle.Render("[x]")
	checkboxOff := DimStyle.Render("[ ]")
	helpStyle := lipgloss.NewStyle().Foreground(ColorComment).MarginTop(1)
	stepIndicatorStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	dialogWidth := 60
	if w.width > 0 && w.width < dialogWidth+10 {
		dialogWidth = w.width - 10
		if dialogWidth < 40 {
			dialogWidth = 40
		}
	}

	dialogStyle := DialogBoxStyle.Width(dialogWidth)

	var content strings.Builder

	stepNames := []string{"Welcome", "Purpose", "Meeting", "Schedule", "Tools", "Ready"}
	var stepIndicators []string
	for i, name := range stepNames {
		switch {
		case i == w.currentStep:
			stepIndicators = append(stepIndicators, stepIndicatorStyle.Render("["+name+"]"))
		case i < w.currentStep:
			stepIndicators = append(stepIndicators, SuccessStyle.Render(name))
		default:
			stepIndicators = append(stepIndicators, DimStyle.Render(name))
		}
	}
	content.WriteString(strings.Join(stepIndicators, " > "))
	content.WriteString("\n\n")

	switch w.currentStep {
	case stepWelcome:
		content.WriteString(DialogTitleStyle.Render("Welcome to JW Tools!"))
		content.WriteString("\n\n")
		content.WriteString(labelStyle.Render("JW Tools launches everything a hybrid meeting needs:"))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("  - Zoom, OBS Studio and Meeting Media Manager"))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("  - Attendance counting from Zoom polls"))
		content.WriteString("\n\n")
		content.WriteString(SubtitleStyle.Render("This wizard sets up the basics. Everything can be changed later."))
		content.WriteString("\n\n")
		content.WriteString(helpStyle.Render("Enter: continue"))

	case stepPurpose:
		content.WriteString(DialogTitleStyle.Render("What is this PC used for?"))
		content.WriteString("\n\n")
		for i, purpose := range w.purposeOptions {
			var line string
			if i == w.selectedPurpose {
				line = selectedStyle.Render(purpose)
			} else {
				line = unselectedStyle.Render(purpose)
			}
			content.WriteString("  " + line)
			content.WriteString(DimStyle.Render("  " + purposeLabels[purpose]))
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(helpStyle.Render("Up/Down: select | Enter: continue | Esc: back"))

	case stepMeetingID:
		content.WriteString(DialogTitleStyle.Render("Zoom Meeting ID"))
		content.WriteString("\n\n")
		content.WriteString(labelStyle.Render("The congregation meeting ID (at least 9 digits)."))
		content.WriteString("\n")
		content.WriteString(SubtitleStyle.Render("Leave empty to launch Zoom without joining a meeting."))
		content.WriteString("\n\n")
		content.WriteString("  " + w.meetingIDInput.View())
		content.WriteString("\n")
		if id := strings.TrimSpace(w.meetingIDInput.Value()); id != "" && !settings.ValidMeetingID(id) {
			content.WriteString("\n")
			content.WriteString(WarningStyle.Render("  Needs at least 9 digits"))
		}
		content.WriteString("\n")
		content.WriteString(helpStyle.Render("Enter: continue | Esc: back"))

	case stepSchedule:
		content.WriteString(DialogTitleStyle.Render("Meeting Schedule"))
		content.WriteString("\n\n")

		midweekLabel := "  Midweek day: "
		weekendLabel := "  Weekend day: "
		if w.scheduleCursor == 0 {
			midweekLabel = "> Midweek day: "
		} else {
			weekendLabel = "> Weekend day: "
		}
		content.WriteString(labelStyle.Render(midweekLabel))
		content.WriteString(HighlightStyle.Render(" " + w.midweekOptions[w.midweekDay] + " "))
		content.WriteString("\n")
		content.WriteString(labelStyle.Render(weekendLabel))
		content.WriteString(HighlightStyle.Render(" " + w.weekendOptions[w.weekendDay] + " "))
		content.WriteString("\n\n")
		content.WriteString(helpStyle.Render("Up/Down: change day | Tab: switch meeting | Enter: continue | Esc: back"))

	case stepTools:
		content.WriteString(DialogTitleStyle.Render("Launch Tools"))
		content.WriteString("\n\n")
		content.WriteString(SubtitleStyle.Render("Zoom always launches; pick what joins it:"))
		content.WriteString("\n\n")

		toggles := []struct {
			label string
			on    bool
		}{
			{"Launch OBS Studio (virtual camera)", w.useOBS},
			{"Launch Meeting Media Manager", w.useMediaManager},
			{"Show pre-meeting reminder", w.useReminder},
			{"Start JW Tools at logon", w.autoLaunch},
		}
		for i, tgl := range toggles {
			if i >= w.toolsCount() {
				break
			}
			checkbox := checkboxOff
			if tgl.on {
				checkbox = checkboxOn
			}
			cursor := "  "
			style := labelStyle
			if i == w.toolsCursor {
				cursor = "> "
				style = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
			}
			content.WriteString(cursor + checkbox + " " + style.Render(tgl.label))
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(helpStyle.Render("Up/Down: navigate | Space: toggle | Enter: continue | Esc: back"))

	case stepReady:
		content.WriteString(DialogTitleStyle.Render("Ready to Go!"))
		content.WriteString("\n\n")
		content.WriteString(labelStyle.Render("Your configuration:"))
		content.WriteString("\n\n")

		content.WriteString(InfoStyle.Render("  PC purpose: "))
		content.WriteString(w.purposeOptions[w.selectedPurpose])
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("  Meeting ID: "))
		if id := strings.TrimSpace(w.meetingIDInput.Value()); id != "" {
			content.WriteString(id)
		} else {
			content.WriteString(DimStyle.Render("(none)"))
		}
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("  Schedule: "))
		content.WriteString(w.midweekOptions[w.midweekDay] + " / " + w.weekendOptions[w.weekendDay])
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("  OBS: "))
		content.WriteString(onOff(w.useOBS))
		content.WriteString(InfoStyle.Render("  Media Manager: "))
		content.WriteString(onOff(w.useMediaManager))
		content.WriteString("\n\n")
		content.WriteString(SubtitleStyle.Render("Press Enter to save and start using JW Tools!"))
		content.WriteString("\n\n")
		content.WriteString(helpStyle.Render("Enter: save & finish | Esc: back"))
	}

	dialog := dialogStyle.Render(content.String())

	return lipgloss.Place(
		w.width,
		w.height,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
	)
}

func onOff(v bool) string {
	if v {
		return SuccessStyle.Render("on ")
	}
	return DimStyle.Render("off ")
}
