package calculator

import (
	"time"

	"github.com/mmynk/kudos/internal/models"
)

// Clock returns the current wall-clock time. Tests substitute a fixed clock.
type Clock func() time.Time

// PeriodCalculator derives the accounting period from a single time source.
type PeriodCalculator struct {
	Clock    Clock
	Location *time.Location
}

// NewPeriodCalculator creates a calculator reading from clock in loc.
// A nil clock uses time.Now and a nil location uses UTC.
func NewPeriodCalculator(clock Clock, loc *time.Location) *PeriodCalculator {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PeriodCalculator{Clock: clock, Location: loc}
}

// Now returns the current time in the calculator's location.
func (c *PeriodCalculator) Now() time.Time {
	return c.Clock().In(c.Location)
}

// CurrentPeriod returns the period containing Now.
func (c *PeriodCalculator) CurrentPeriod() models.Period {
	return PeriodOf(c.Now())
}

// Resolve returns p if it is set, otherwise the current period.
// A partially set period fills the missing half from the current period,
// so month=3 alone means March of this year.
func (c *PeriodCalculator) Resolve(p *models.Period) (models.Period, error) {
	current := c.CurrentPeriod()
	if p == nil {
		return current, nil
	}

	resolved := *p
	if resolved.Month == 0 {
		resolved.Month = current.Month
	}
	if resolved.Year == 0 {
		resolved.Year = current.Year
	}
	if err := resolved.Validate(); err != nil {
		return models.Period{}, err
	}
	return resolved, nil
}

// PeriodOf returns the period containing t, in t's location.
func PeriodOf(t time.Time) models.Period {
	return models.Period{Month: int(t.Month()), Year: t.Year()}
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
