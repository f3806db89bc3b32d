package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTimecode converts SRT ("00:01:02,500") or ASS ("0:01:02.50") notation to seconds.
func ParseTimecode(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Normalize comma to period so both notations share one path
	value = strings.ReplaceAll(value, ",", ".")
	whole, frac, hasFrac := strings.Cut(value, ".")
	hms := strings.Split(whole, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := float64(hours*3600 + minutes*60 + seconds)
	if hasFrac {
		digits, err := strconv.Atoi(frac)
		if err != nil || frac == "" || digits < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		total += float64(digits) / math.Pow10(len(frac))
	}
	return total, nil
}

// FormatTimecode renders seconds in SRT notation.
func FormatTimecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	h := millis / 3_600_000
	m := (millis / 60_000) % 60
	s := (millis / 1000) % 60
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
