package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timeframe presets offered by the UI, in seconds.
const (
	TF15s int64 = 15
	TF30s int64 = 30
	TF1m  int64 = 60
	TF5m  int64 = 300
	TF15m int64 = 900
)

// Presets returns the timeframes selectable by a single key press.
func Presets() []int64 { return []int64{TF15s, TF30s, TF1m, TF5m, TF15m} }

// IsValidTimeframe returns true if tf can be used as a bucket width.
func IsValidTimeframe(tf int64) bool { return tf > 0 }

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() int64 { return TF1m }

// ParseTimeframe accepts plain seconds ("90") or a Go duration ("5m").
func ParseTimeframe(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTimeframe(), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if !IsValidTimeframe(n) {
			return 0, fmt.Errorf("timeframe must be positive, got %d", n)
		}
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse timeframe %q: %w", s, err)
	}
	sec := int64(d / time.Second)
	if !IsValidTimeframe(sec) {
		return 0, fmt.Errorf("timeframe must be at least 1s, got %s", s)
	}
	return sec, nil
}

// FormatTimeframe renders seconds the way the presets are labelled.
func FormatTimeframe(tf int64) string {
	switch {
	case tf%3600 == 0:
		return fmt.Sprintf("%dh", tf/3600)
	case tf%60 == 0:
		return fmt.Sprintf("%dm", tf/60)
	default:
		return fmt.Sprintf("%ds", tf)
	}
}
