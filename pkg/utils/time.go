package utils

import (
	"sync"
	"time"
)

// ISOMillis is the timestamp layout stored in records (JavaScript toISOString)
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

// FormatISO formats t in UTC with millisecond precision
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// ParseISO parses a timestamp written by FormatISO or any RFC3339 variant
func ParseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Clock supplies wall-clock time. Tests swap it for a fixed or stepping clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the machine clock
type SystemClock struct{}

// Now implements Clock
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// MonotonicClock never returns the same or an earlier instant twice at
// millisecond resolution, so timestamps written through it strictly increase
// even when calls land inside the same millisecond.
type MonotonicClock struct {
	mu   sync.Mutex
	base Clock
	last time.Time
}

// NewMonotonicClock wraps base (SystemClock when nil)
func NewMonotonicClock(base Clock) *MonotonicClock {
	if base == nil {
		base = SystemClock{}
	}
	return &MonotonicClock{base: base}
}

// Now implements Clock
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.base.Now().UTC().Truncate(time.Millisecond)
	if !now.After(c.last) {
		now = c.last.Add(time.Millisecond)
	}
	c.last = now
	return now
}

// After reports a time that strictly follows prev
func (c *MonotonicClock) After(prev time.Time) time.Time {
	c.mu.Lock()
	if prev.After(c.last) {
		c.last = prev.UTC().Truncate(time.Millisecond)
	}
	c.mu.Unlock()
	return c.Now()
}
