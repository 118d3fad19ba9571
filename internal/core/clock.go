package core

import "time"

// Clock supplies the current time to anything that resolves dates.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant. Useful in tests.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
