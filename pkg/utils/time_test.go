package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestMonotonicClockStrictlyIncreases(t *testing.T) {
	base := fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	clock := NewMonotonicClock(base)

	first := clock.Now()
	second := clock.Now()
	third := clock.Now()

	assert.True(t, second.After(first))
	assert.True(t, third.After(second))
	assert.Equal(t, time.Millisecond, second.Sub(first))
}

func TestMonotonicClockAfterPastValue(t *testing.T) {
	base := fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	clock := NewMonotonicClock(base)

	// a stored value from a skewed writer that is ahead of our clock
	stored := base.t.Add(5 * time.Second)
	next := clock.After(stored)

	assert.True(t, next.After(stored))
}

func TestFormatISORoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	s := FormatISO(ts)
	assert.Equal(t, "2024-01-02T03:04:05.006Z", s)

	parsed, err := ParseISO(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}
