// Package clock abstracts wall-clock access so billing horizons are
// deterministic in tests.
package clock

import (
	"time"

	"github.com/suitedesk/suitedesk/internal/civil"
)

type Clock interface {
	Now() time.Time
}

// Today returns the current calendar date in UTC.
func Today(c Clock) civil.Date {
	return civil.DateOf(c.Now().UTC())
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
