package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseExpiry accepts Go durations ("15m", "36h") and the day shorthand
// used in token expiry settings ("1d", "10d").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}
