// Package duration converts between ISO 8601 duration codes as returned by
// the YouTube videos endpoint and plain seconds or clock strings.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
)

var iso8601Re = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseSeconds parses an ISO 8601 duration code (e.g. "PT1M30S", "PT2H15M30S")
// into total seconds. Malformed input yields 0 rather than an error; the
// catalog treats an unparseable duration as a zero-length video.
func ParseSeconds(code string) int {
	if code == "" {
		return 0
	}

	matches := iso8601Re.FindStringSubmatch(code)
	if matches == nil {
		return 0
	}

	var total int
	if matches[1] != "" {
		if hours, err := strconv.Atoi(matches[1]); err == nil {
			total += hours * 3600
		}
	}
	if matches[2] != "" {
		if minutes, err := strconv.Atoi(matches[2]); err == nil {
			total += minutes * 60
		}
	}
	if matches[3] != "" {
		if seconds, err := strconv.Atoi(matches[3]); err == nil {
			total += seconds
		}
	}

	return total
}

// FormatClock renders total seconds as "MM:SS", or "HH:MM:SS" once the
// duration reaches an hour. All fields are zero-padded to two digits.
func FormatClock(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
