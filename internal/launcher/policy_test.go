package launcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/advenimus/jwtools/internal/settings"
)

// 2024-01-01 is a Monday, so day N of January 2024 is weekday N mod 7.
func janDay(day int) time.Time {
	return time.Date(2024, time.January, day, 10, 0, 0, 0, time.UTC)
}

func messageWith(displayWhen string) settings.CustomMessageSettings {
	msg := settings.DefaultMediaConfig().CustomMessage
	msg.Enabled = true
	msg.DisplayWhen = displayWhen
	return msg
}

func scheduleWithWeekend(day string) settings.MeetingSchedule {
	sched := settings.DefaultUniversalSettings().MeetingSchedule
	sched.Weekend.Day = day
	return sched
}

func TestShouldShowCustomMessageNever(t *testing.T) {
	msg := messageWith(settings.DisplayNever)
	sched := scheduleWithWeekend("sunday")

	for day := 1; day <= 7; day++ {
		assert.False(t, ShouldShowCustomMessage(msg, sched, janDay(day)))
	}
}

func TestShouldShowCustomMessageAlways(t *testing.T) {
	msg := messageWith(settings.DisplayAlways)
	sched := scheduleWithWeekend("sunday")

	for day := 1; day <= 7; day++ {
		assert.True(t, ShouldShowCustomMessage(msg, sched, janDay(day)))
	}
}

func TestShouldShowCustomMessageWeekend(t *testing.T) {
	msg := messageWith(settings.DisplayWeekend)

	tests := []struct {
		name       string
		weekendDay string
		day        int
		want       bool
	}{
		{"saturday meeting on saturday", "saturday", 6, true},
		{"saturday meeting on sunday", "saturday", 7, false},
		{"sunday meeting on sunday", "sunday", 7, true},
		{"sunday meeting on monday", "sunday", 1, false},
		{"case insensitive day match", "SUNDAY", 7, true},
		{"midweek day configured as weekend", "wednesday", 3, true},
		{"unconfigured weekend day", "", 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldShowCustomMessage(msg, scheduleWithWeekend(tt.weekendDay), janDay(tt.day))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldShowCustomMessageUnknownMode(t *testing.T) {
	msg := messageWith("sometimes")
	assert.False(t, ShouldShowCustomMessage(msg, scheduleWithWeekend("sunday"), janDay(7)))

	msg.DisplayWhen = ""
	assert.False(t, ShouldShowCustomMessage(msg, scheduleWithWeekend("sunday"), janDay(7)))
}

// The policy reads only its arguments, never the clock or the store, so two
// calls with the same inputs always agree.
func TestShouldShowCustomMessageIsPure(t *testing.T) {
	msg := messageWith(settings.DisplayWeekend)
	sched := scheduleWithWeekend("sunday")
	now := janDay(7)

	first := ShouldShowCustomMessage(msg, sched, now)
	second := ShouldShowCustomMessage(msg, sched, now)
	assert.Equal(t, first, second)
}
