package launcher

import (
	"strings"
	"time"

	"github.com/advenimus/jwtools/internal/settings"
)

// ShouldShowCustomMessage decides whether the pre-meeting message step runs.
// Pure function of its three inputs:
//
//	"none"    never
//	"always"  always
//	"weekend" only when now falls on the configured weekend meeting day
//
// An unconfigured weekend day means false, not an error.
func ShouldShowCustomMessage(msg settings.CustomMessageSettings, sched settings.MeetingSchedule, now time.Time) bool {
	switch msg.DisplayWhen {
	case settings.DisplayAlways:
		return true
	case settings.DisplayWeekend:
		weekendDay := strings.TrimSpace(sched.Weekend.Day)
		if weekendDay == "" {
			return false
		}
		today := now.Weekday().String()
		return strings.EqualFold(today, weekendDay)
	default:
		// "none", empty, or anything unrecognized
		return false
	}
}
