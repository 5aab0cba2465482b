// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"time"
)

// KeyName validates a key name is non-empty after trimming whitespace.
func KeyName(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	return nil
}

// TTLString validates a TTL argument: a positive Go duration or "none"
// to clear the expiry.
func TTLString(s string) error {
	if s == "none" {
		return nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q (try 90s, 5m, 1h30m, or none)", s)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}
