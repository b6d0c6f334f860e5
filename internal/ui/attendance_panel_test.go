package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/attendance"
)

func typeDigits(t *testing.T, p *AttendancePanel, s string) *AttendancePanel {
	t.Helper()
	for _, r := range s {
		p, _ = p.Update(key(string(r)))
	}
	return p
}

func TestAttendancePanelCountsAndTotal(t *testing.T) {
	p := NewAttendancePanel(nil)
	p.Show()

	p = typeDigits(t, p, "12") // 12 devices with one person
	p, _ = p.Update(key("down"))
	p = typeDigits(t, p, "20") // 20 devices with two

	// jump to the phone row
	for i := 0; i < 9; i++ {
		p, _ = p.Update(key("down"))
	}
	p = typeDigits(t, p, "5")

	counts := p.Counts()
	assert.Equal(t, 12, counts.Options[0])
	assert.Equal(t, 20, counts.Options[1])
	assert.Equal(t, 5, counts.Phone)
	assert.Equal(t, 12+40+5, p.Total())
}

func TestAttendancePanelBlankRowsCountAsZero(t *testing.T) {
	p := NewAttendancePanel(nil)
	p.Show()

	assert.Equal(t, attendance.Counts{}, p.Counts())
	assert.Equal(t, 0, p.Total())
}

func TestAttendancePanelRowNavigationWraps(t *testing.T) {
	p := NewAttendancePanel(nil)
	p.Show()
	require.Equal(t, 0, p.cursor)

	p, _ = p.Update(key("up"))
	assert.Equal(t, fieldCount-1, p.cursor)

	p, _ = p.Update(key("down"))
	assert.Equal(t, 0, p.cursor)
}

func TestAttendancePanelRejectsNonDigitInput(t *testing.T) {
	p := NewAttendancePanel(nil)
	p.Show()

	p = typeDigits(t, p, "abc")
	assert.Equal(t, 0, p.Counts().Options[0])
}

func TestAttendancePanelSave(t *testing.T) {
	var savedCounts attendance.Counts
	savedTotal := -1
	p := NewAttendancePanel(func(c attendance.Counts, total int) error {
		savedCounts = c
		savedTotal = total
		return nil
	})
	p.Show()

	p = typeDigits(t, p, "3")
	p, _ = p.Update(key("enter"))

	assert.Equal(t, 3, savedCounts.Options[0])
	assert.Equal(t, 3, savedTotal)
	assert.Contains(t, p.status, "3")
}

func TestAttendancePanelSaverFailureKeepsTotal(t *testing.T) {
	p := NewAttendancePanel(func(attendance.Counts, int) error {
		return errors.New("db closed")
	})
	p.Show()

	p = typeDigits(t, p, "7")
	p, _ = p.Update(key("enter"))

	assert.Contains(t, p.status, "7")
	assert.Contains(t, p.status, "db closed")
}

func TestAttendancePanelViewShowsLiveTotal(t *testing.T) {
	p := NewAttendancePanel(nil)
	p.Show()
	p = typeDigits(t, p, "4")

	view := p.View()
	assert.Contains(t, view, "Total:")
	assert.Contains(t, view, "4")
}
