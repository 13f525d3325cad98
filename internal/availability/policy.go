// Package availability decides which doors can be opened at a given instant.
package availability

import (
	"time"

	"advent-calendar/internal/door"
)

// Season boundaries of the calendar.
const (
	SeasonMonth = time.December
	LastDay     = door.Count
)

// AvailableDay returns the highest unlockable door for now, evaluated in loc.
// It returns 0 before December, the day of month during December 1..24 and
// door.Count once the 24th has passed.
func AvailableDay(now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	month, day := local.Month(), local.Day()

	switch {
	case month < SeasonMonth:
		return 0
	case month > SeasonMonth, day > LastDay:
		return door.Count
	default:
		return day
	}
}

// Policy binds the availability rule to a clock and reference timezone.
type Policy struct {
	Location *time.Location
	Now      func() time.Time
}

func NewPolicy(loc *time.Location) *Policy {
	return &Policy{Location: loc, Now: time.Now}
}

// AvailableDay evaluates the rule at the policy's current time.
func (p *Policy) AvailableDay() int {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return AvailableDay(now(), p.Location)
}

// Effective returns the unlock ceiling for a requester. Test mode opens every door.
func (p *Policy) Effective(testMode bool) int {
	if testMode {
		return door.Count
	}
	return p.AvailableDay()
}

// Unlocked reports whether day may be revealed.
func (p *Policy) Unlocked(day int, testMode bool) bool {
	return day >= 1 && day <= p.Effective(testMode)
}
