package clock

import (
	"time"

	"lodge/shared/timezone"
)

// Clock supplies the current date for date-relative reservation rules.
// Services take it as a dependency so the rules stay testable.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type clockImpl struct{}

// New returns a Clock backed by the application timezone.
func New() Clock {
	return &clockImpl{}
}

func (c *clockImpl) Now() time.Time {
	return timezone.Now()
}

func (c *clockImpl) Today() time.Time {
	return Midnight(timezone.Now())
}

// Midnight truncates a time to the start of its day, keeping the location.
func Midnight(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a Clock pinned to the given instant. Test helper.
func NewFixed(now time.Time) Clock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Today() time.Time {
	return Midnight(c.now)
}
