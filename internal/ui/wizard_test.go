package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/onboarding"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestWizardStepNavigation(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	assert.Equal(t, stepWelcome, w.currentStep)

	w, _ = w.Update(key("enter"))
	assert.Equal(t, stepPurpose, w.currentStep)

	w, _ = w.Update(key("esc"))
	assert.Equal(t, stepWelcome, w.currentStep)

	// Walk forward to the end; the last Enter completes.
	for i := 0; i < 5; i++ {
		w, _ = w.Update(key("enter"))
	}
	assert.Equal(t, stepReady, w.currentStep)
	assert.False(t, w.IsComplete())

	w, _ = w.Update(key("enter"))
	assert.True(t, w.IsComplete())
}

func TestWizardDefaultAnswers(t *testing.T) {
	w := NewSetupWizard()
	w.Show()

	a := w.GetAnswers()
	assert.Equal(t, onboarding.PurposeZoomHost, a.PCPurpose)
	assert.Equal(t, "tuesday", a.MidweekDay)
	assert.Equal(t, "sunday", a.WeekendDay)
	assert.Empty(t, a.MeetingID)
	assert.False(t, a.UseOBS)
	assert.False(t, a.AutoLaunch)
}

func TestWizardPurposeSelection(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	w, _ = w.Update(key("enter")) // to purpose step

	w, _ = w.Update(key("down"))
	assert.Equal(t, onboarding.PurposeZoomAttendant, w.GetAnswers().PCPurpose)

	w, _ = w.Update(key("up"))
	w, _ = w.Update(key("up"))
	assert.Equal(t, onboarding.PurposeOther, w.GetAnswers().PCPurpose, "selection wraps")
}

func TestWizardMeetingIDInput(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	w, _ = w.Update(key("enter")) // purpose
	w, _ = w.Update(key("enter")) // meeting id

	for _, r := range "123 4567 8901" {
		w, _ = w.Update(key(string(r)))
	}
	assert.Equal(t, "123 4567 8901", w.GetAnswers().MeetingID)
}

func TestWizardScheduleSelection(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	for i := 0; i < 3; i++ {
		w, _ = w.Update(key("enter")) // to schedule step
	}
	require.Equal(t, stepSchedule, w.currentStep)

	w, _ = w.Update(key("down"))
	assert.Equal(t, "wednesday", w.GetAnswers().MidweekDay)

	w, _ = w.Update(key("tab"))
	w, _ = w.Update(key("down"))
	assert.Equal(t, "saturday", w.GetAnswers().WeekendDay)
}

func TestWizardToolToggles(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	for i := 0; i < 4; i++ {
		w, _ = w.Update(key("enter")) // to tools step
	}
	require.Equal(t, stepTools, w.currentStep)

	w, _ = w.Update(key(" ")) // toggle OBS
	w, _ = w.Update(key("down"))
	w, _ = w.Update(key(" ")) // toggle Media Manager
	w, _ = w.Update(key("down"))
	w, _ = w.Update(key("down"))
	w, _ = w.Update(key(" ")) // toggle autostart (row 3, zoom-host has 4 rows)

	a := w.GetAnswers()
	assert.True(t, a.UseOBS)
	assert.True(t, a.UseMediaManager)
	assert.False(t, a.UseReminder)
	assert.True(t, a.AutoLaunch)
}

func TestWizardReminderRowOnlyForZoomHost(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	w, _ = w.Update(key("enter"))
	w, _ = w.Update(key("down")) // zoom-attendant
	assert.Equal(t, 3, w.toolsCount())

	w, _ = w.Update(key("up")) // back to zoom-host
	assert.Equal(t, 4, w.toolsCount())
}

func TestWizardViewRendersEachStep(t *testing.T) {
	w := NewSetupWizard()
	w.Show()
	w.SetSize(80, 24)

	for i := 0; i <= stepReady; i++ {
		view := w.View()
		assert.NotEmpty(t, view)
		w, _ = w.Update(key("enter"))
	}
}
