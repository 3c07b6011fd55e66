package grouping

import (
	"fmt"
	"time"
)

// ParseWindowSize parses a positive duration.
// Supports Go duration syntax (e.g., "30m", "12h") plus "Xd" for days.
func ParseWindowSize(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: window size must not be empty", ErrInvalidGrouping)
	}

	// time.ParseDuration has no day unit.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return 0, fmt.Errorf("%w: window size %q: %v", ErrInvalidGrouping, s, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("%w: window size must be positive, got %q", ErrInvalidGrouping, s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: window size %q: %v", ErrInvalidGrouping, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: window size must be positive, got %q", ErrInvalidGrouping, s)
	}
	return d, nil
}
