package solver

import (
	"fmt"
	"strconv"
	"strings"
)

// Full planning horizon in minutes-of-day.
const (
	horizonStart = 0
	horizonEnd   = 1440
)

// parseClock converts an "HH:MM" string to minutes-of-day.
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// parseWindow converts an "HH:MM-HH:MM" operating window to a
// (start, end) minute pair. An end before the start is rejected.
func parseWindow(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("parse window %q: want HH:MM-HH:MM", s)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("parse window %q: end not after start", s)
	}
	return start, end, nil
}
