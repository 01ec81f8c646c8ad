package schedule

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

type DurationUnit string

const (
	UnitMinutes DurationUnit = "minutes"
	UnitHours   DurationUnit = "hours"
)

const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 480
	DefaultDurationMinutes = 30
)

// PresetDurations are the durations offered without the custom input.
var PresetDurations = []int{15, 30, 45, 60, 90, 120}

var ErrInvalidDuration = errors.New("duration must be between 15 minutes and 8 hours (480 minutes)")

// DurationMinutes converts a value typed in the given unit to whole minutes and checks the bounds.
func DurationMinutes(value float64, unit DurationUnit) (int, error) {
	var minutes float64
	switch unit {
	case UnitMinutes, "":
		minutes = value
	case UnitHours:
		minutes = value * 60
	default:
		return 0, fmt.Errorf("unknown duration unit %q", unit)
	}

	if math.IsNaN(minutes) || minutes != math.Trunc(minutes) {
		return 0, fmt.Errorf("%w: %v %s is not a whole number of minutes", ErrInvalidDuration, value, unit)
	}

	m := int(minutes)
	if err := ValidateDuration(m); err != nil {
		return 0, err
	}
	return m, nil
}

func ValidateDuration(minutes int) error {
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return fmt.Errorf("%w: got %d minutes", ErrInvalidDuration, minutes)
	}
	return nil
}

func IsPresetDuration(minutes int) bool {
	return slices.Contains(PresetDurations, minutes)
}

// DisplayDuration picks the unit a stored duration is shown in: whole hours when possible.
func DisplayDuration(minutes int) (float64, DurationUnit) {
	if !IsPresetDuration(minutes) && minutes >= 60 && minutes%60 == 0 {
		return float64(minutes / 60), UnitHours
	}
	return float64(minutes), UnitMinutes
}
