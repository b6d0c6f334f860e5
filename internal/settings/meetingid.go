package settings

import "strings"

// MinMeetingIDDigits is the shortest meeting identifier Zoom accepts.
const MinMeetingIDDigits = 9

// NormalizeMeetingID strips everything but digits from a raw meeting
// identifier ("123-456-7890" becomes "1234567890").
func NormalizeMeetingID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidMeetingID reports whether the raw identifier normalizes to at least
// MinMeetingIDDigits digits.
func ValidMeetingID(raw string) bool {
	return len(NormalizeMeetingID(raw)) >= MinMeetingIDDigits
}
