package parsing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateAbsoluteFormats(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2025-06-15", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"06/15/2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"June 15, 2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"Jun 15, 2025", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-06-15 10:30:00", time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		require.True(t, ok, "input %q", tt.input)
		assert.True(t, tt.expected.Equal(got), "input %q: got %v", tt.input, got)
	}
}

func TestParseDateRelative(t *testing.T) {
	now := time.Now()

	got, ok := ParseDate("Posted today")
	require.True(t, ok)
	assert.WithinDuration(t, now, got, time.Minute)

	got, ok = ParseDate("yesterday")
	require.True(t, ok)
	assert.WithinDuration(t, now.AddDate(0, 0, -1), got, time.Minute)

	got, ok = ParseDate("3 days ago")
	require.True(t, ok)
	assert.WithinDuration(t, now.AddDate(0, 0, -3), got, time.Minute)

	got, ok = ParseDate("2 weeks ago")
	require.True(t, ok)
	assert.WithinDuration(t, now.AddDate(0, 0, -14), got, time.Minute)
}

func TestParseDateUnparseable(t *testing.T) {
	for _, input := range []string{"", "   ", "sometime soon", "n/a"} {
		got, ok := ParseDate(input)
		assert.False(t, ok, "input %q", input)
		assert.True(t, got.IsZero(), "input %q", input)
	}
}
