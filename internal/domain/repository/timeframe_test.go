package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 60},
		{"15", 15},
		{" 900 ", 900},
		{"5m", 300},
		{"1h", 3600},
		{"90s", 90},
	}
	for _, tt := range tests {
		got, err := ParseTimeframe(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTimeframe_Invalid(t *testing.T) {
	for _, in := range []string{"0", "-5", "500ms", "abc"} {
		_, err := ParseTimeframe(in)
		assert.Error(t, err, in)
	}
}

func TestFormatTimeframe(t *testing.T) {
	assert.Equal(t, "15s", FormatTimeframe(15))
	assert.Equal(t, "1m", FormatTimeframe(60))
	assert.Equal(t, "15m", FormatTimeframe(900))
	assert.Equal(t, "2h", FormatTimeframe(7200))
	assert.Equal(t, "90s", FormatTimeframe(90))
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []int64{15, 30, 60, 300, 900}, Presets())
	for _, p := range Presets() {
		assert.True(t, IsValidTimeframe(p))
	}
	assert.False(t, IsValidTimeframe(0))
}
