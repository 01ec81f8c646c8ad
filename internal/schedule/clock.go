package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	layout12 = "3:04pm"
	layout24 = "15:04"
)

var ErrInvalidTime = errors.New("invalid time of day")

// To24Hour converts a display time such as "9:00am" or "12:30pm" to "09:00" / "12:30".
func To24Hour(s string) (string, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	t, err := time.Parse(layout12, normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Format(layout24), nil
}

// To12Hour converts "HH:MM" to the display form used by the editor, e.g. "9:00am".
func To12Hour(s string) (string, error) {
	t, err := time.Parse(layout24, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Format(layout12), nil
}

// ParseClock returns the minutes since midnight of an "HH:MM" value.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(layout24, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock is the inverse of ParseClock. minutes must be in [0, 1440).
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDisplay renders minutes since midnight in 12-hour display form.
func FormatDisplay(minutes int) string {
	h := minutes / 60
	suffix := "am"
	if h >= 12 {
		suffix = "pm"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d%s", h, minutes%60, suffix)
}

// DisplayKey returns the 24-hour sort key of a display time. Unparseable values sort last.
func DisplayKey(display string) string {
	k, err := To24Hour(display)
	if err != nil {
		return "99:99"
	}
	return k
}
