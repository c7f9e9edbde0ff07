package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tutorhub-service/internal/models"
	"tutorhub-service/internal/pricing"
)

const SlotDurationMinutes = 60

// FallbackEndTime is returned by CalculateEndTime alongside an error when the
// start time cannot be parsed. Callers must log the error; the sentinel keeps
// malformed input from turning into wrong arithmetic downstream.
const FallbackEndTime = "11:00 AM"

var ErrBadTimeFormat = errors.New("invalid time format")

type TimeSlot struct {
	Date      time.Time
	StartTime string
	EndTime   string
}

// WeekdayAbbrev maps a date to its Sun..Sat abbreviation. The calendar basis
// is fixed to UTC so generation and availability matching never disagree
// across deployment regions.
func WeekdayAbbrev(t time.Time) string {
	return t.UTC().Weekday().String()[:3]
}

// GenerateSlots expands a start date plus selected weekdays into concrete
// calendar slots over the package window (1/7/30 days). Deterministic: the
// same inputs always yield the same chronological sequence. An empty day
// selection yields zero slots; a start date falling on an unselected day is
// skipped, not force-included.
func GenerateSlots(startDate time.Time, selectedDays []string, startTime, endTime string, kind models.PackageKind) []TimeSlot {
	selected := make(map[string]struct{}, len(selectedDays))
	for _, d := range selectedDays {
		selected[d] = struct{}{}
	}

	horizon := pricing.PackageDuration(kind)
	day := truncateToDate(startDate)

	var slots []TimeSlot
	for i := 0; i < horizon; i++ {
		d := day.AddDate(0, 0, i)
		if _, ok := selected[WeekdayAbbrev(d)]; !ok {
			continue
		}
		slots = append(slots, TimeSlot{
			Date:      d,
			StartTime: startTime,
			EndTime:   endTime,
		})
	}

	return slots
}

// CalculateEndTime derives the end of a 60-minute class from its
// "HH:MM AM/PM" start, rolling the period at the 12 o'clock boundary in both
// directions (11:30 AM -> 12:30 PM, 11:30 PM -> 12:30 AM).
func CalculateEndTime(startTime string) (string, error) {
	minutes, err := parseClockTime(startTime)
	if err != nil {
		return FallbackEndTime, err
	}

	minutes = (minutes + SlotDurationMinutes) % (24 * 60)

	return formatClockTime(minutes), nil
}

// parseClockTime converts "HH:MM AM/PM" to minutes since midnight.
func parseClockTime(s string) (int, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}

	period := strings.ToUpper(parts[1])
	if period != "AM" && period != "PM" {
		return 0, fmt.Errorf("%w: bad period %q", ErrBadTimeFormat, parts[1])
	}

	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}

	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, fmt.Errorf("%w: bad hour %q", ErrBadTimeFormat, hm[0])
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, fmt.Errorf("%w: bad minute %q", ErrBadTimeFormat, hm[1])
	}

	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrBadTimeFormat, s)
	}

	minutes := (hour%12)*60 + minute
	if period == "PM" {
		minutes += 12 * 60
	}

	return minutes, nil
}

func formatClockTime(minutes int) string {
	hour24 := minutes / 60
	minute := minutes % 60

	period := "AM"
	if hour24 >= 12 {
		period = "PM"
	}

	hour := hour24 % 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%02d:%02d %s", hour, minute, period)
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
