package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLocalDate parses "YYYY-MM-DD" (month 1-based) into local midnight of
// that calendar day.
func ParseLocalDate(dateStr string) (time.Time, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q out of range", dateStr)
	}
	got := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow days (Feb 30 becomes Mar 2); that is a
	// malformed input here, not a different day.
	if got.Day() != day || got.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("date %q out of range", dateStr)
	}
	return got, nil
}

// ParseClock parses a time of day, either 24-hour "HH:MM" or 12-hour
// "HH:MM AM"/"HH:MM PM". The AM/PM suffix decides which interpretation
// applies.
func ParseClock(timeStr string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(timeStr))
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, fmt.Errorf("invalid time %q", timeStr)
	}

	hm := strings.Split(fields[0], ":")
	if len(hm) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err1 := strconv.Atoi(hm[0])
	minute, err2 := strconv.Atoi(hm[1])
	if err1 != nil || err2 != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}

	if len(fields) == 2 {
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("invalid 12-hour time %q", timeStr)
		}
		switch strings.ToUpper(fields[1]) {
		case "AM":
			if hour == 12 {
				hour = 0
			}
		case "PM":
			if hour != 12 {
				hour += 12
			}
		default:
			return 0, 0, fmt.Errorf("invalid meridiem in %q", timeStr)
		}
	} else if hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid 24-hour time %q", timeStr)
	}

	return hour, minute, nil
}

// CombineLocal joins a "YYYY-MM-DD" date and a time-of-day string into one
// absolute local timestamp.
func CombineLocal(dateStr, timeStr string) (time.Time, error) {
	day, err := ParseLocalDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}
