package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ISO 8601 durations as the YouTube API emits them: PT4M13S, P1DT2H.
var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISO8601Duration returns the duration in seconds. ok is false when
// the value does not parse.
func ParseISO8601Duration(value string) (seconds int64, ok bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return 0, false
	}
	m := isoDurationRE.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}
	part := func(s string) int64 {
		if s == "" {
			return 0
		}
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	}
	days := part(m[1])
	hours := part(m[2])
	minutes := part(m[3])
	secs := part(m[4])
	return secs + minutes*60 + hours*3600 + days*86400, true
}

// FormatWatchTime renders seconds compactly: "45s", "12m", "2h 15m",
// "3d 4h".
func FormatWatchTime(totalSeconds int64) string {
	if totalSeconds < 0 {
		return ""
	}
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}

	minutes := totalSeconds / 60
	if totalSeconds < 3600 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	minutes = minutes % 60
	if totalSeconds < 86400 {
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}

	days := hours / 24
	hours = hours % 24
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd %dh", days, hours)
}
