// Package timeutil formats timestamps for console display.
// All output uses the local timezone of the process.
package timeutil

import (
	"fmt"
	"time"
)

// Common format layouts.
const (
	// FormatClock is the time of day (15:04:05).
	FormatClock = "15:04:05"

	// FormatDateTime is a full timestamp (2006-01-02 15:04).
	FormatDateTime = "2006-01-02 15:04"
)

// Clock formats t as a local time of day.
func Clock(t time.Time) string {
	return t.Local().Format(FormatClock)
}

// DateTime formats t as a local date and time.
func DateTime(t time.Time) string {
	return t.Local().Format(FormatDateTime)
}

// FormatRelative returns a human-readable relative time string.
func FormatRelative(t time.Time) string {
	return FormatRelativeTo(t, time.Now())
}

// FormatRelativeTo describes t relative to now.
func FormatRelativeTo(t, now time.Time) string {
	duration := now.Sub(t)
	if duration < 0 {
		return formatFutureDuration(-duration)
	}
	return formatPastDuration(duration)
}

func formatPastDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatFutureDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	default:
		return fmt.Sprintf("in %d h", int(d.Hours()))
	}
}
