package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration validates that a duration is greater than zero.
// Commonly used for timeout, TTL, and interval validation.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange validates that a duration is within [min, max]
// inclusive.
func ValidateDurationRange(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min %v > max %v", min, max)
	}
	if d < min || d > max {
		return fmt.Errorf("duration %v outside allowed range [%v, %v]", d, min, max)
	}
	return nil
}
