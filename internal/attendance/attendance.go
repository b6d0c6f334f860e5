// Package attendance turns Zoom poll results into a meeting attendance
// count. Each poll option i represents a device with i people behind it, so
// the total weights every option count by its option number; phone-only
// participants count one each.
package attendance

import (
	"fmt"
	"log/slog"

	"github.com/advenimus/jwtools/internal/logging"
)

var attendanceLog = logging.ForComponent(logging.CompAttendance)

// NumPollOptions is how many "people at this device" poll answers exist.
const NumPollOptions = 10

// Counts holds the raw tallies from one poll. Options[i] is the number of
// devices that answered "i+1 people here".
type Counts struct {
	Options [NumPollOptions]int `json:"options"`
	Phone   int                 `json:"phone"`
}

// Validate rejects tallies that cannot come from a real poll.
func (c Counts) Validate() error {
	for i, n := range c.Options {
		if n < 0 {
			return fmt.Errorf("option %d count is negative: %d", i+1, n)
		}
	}
	if c.Phone < 0 {
		return fmt.Errorf("phone count is negative: %d", c.Phone)
	}
	return nil
}

// Total computes the attendance from validated counts.
func (c Counts) Total() int {
	total := c.Phone
	for i, n := range c.Options {
		total += n * (i + 1)
	}
	return total
}

// Calculate validates the tallies and returns the attendance total.
func Calculate(c Counts) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	total := c.Total()
	attendanceLog.Info("attendance_calculated",
		slog.Int("total", total), slog.Int("phone", c.Phone))
	return total, nil
}
