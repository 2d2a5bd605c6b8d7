package hos

import (
	"fmt"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Clock tracks a driver's running HOS totals during one scheduling run.
// It is mutated only by the Builder that owns it and is not safe for
// concurrent use.
//
// Cycle minutes are consumed monotonically: the scheduler knows nothing about
// history before the trip beyond the starting value, so nothing ages out.
type Clock struct {
	rules Rules

	drivingToday int
	windowToday  int
	windowOpen   bool
	sinceBreak   int // driving minutes since the last qualifying interruption
	cycleUsed    int
	status       domain.DutyStatus
}

// ClockState is a read-only snapshot of a Clock.
type ClockState struct {
	DrivingToday int
	WindowToday  int
	WindowOpen   bool
	SinceBreak   int
	CycleUsed    int
	Status       domain.DutyStatus
}

// NewClock returns a clock at the start of a fresh duty day with cycleUsed
// minutes already spent in the current cycle.
func NewClock(rules Rules, cycleUsed int) *Clock {
	return &Clock{rules: rules, cycleUsed: cycleUsed, status: domain.OffDuty}
}

// State returns a snapshot of the counters.
func (c *Clock) State() ClockState {
	return ClockState{
		DrivingToday: c.drivingToday,
		WindowToday:  c.windowToday,
		WindowOpen:   c.windowOpen,
		SinceBreak:   c.sinceBreak,
		CycleUsed:    c.cycleUsed,
		Status:       c.status,
	}
}

// CycleHeadroom is the number of work minutes left in the cycle.
func (c *Clock) CycleHeadroom() int {
	return c.rules.MaxCycle - c.cycleUsed
}

// WindowHeadroom is the number of minutes left in today's on-duty window.
// Before the first on-duty event of the day the whole window is available.
func (c *Clock) WindowHeadroom() int {
	if !c.windowOpen {
		return c.rules.MaxOnDutyWindow
	}
	return c.rules.MaxOnDutyWindow - c.windowToday
}

// DrivingHeadroom is the number of minutes that can be driven before any
// limit is reached.
func (c *Clock) DrivingHeadroom() int {
	return min(
		c.rules.MaxDrivingPerDay-c.drivingToday,
		c.WindowHeadroom(),
		c.rules.MaxDrivingBeforeBreak-c.sinceBreak,
		c.CycleHeadroom(),
	)
}

// CanDrive reports whether driving for the given minutes stays within the
// daily driving, on-duty window, break and cycle limits.
func (c *Clock) CanDrive(minutes int) bool {
	return minutes <= c.DrivingHeadroom()
}

// NeedsBreak reports whether the driver must take a qualifying break before
// driving again.
func (c *Clock) NeedsBreak() bool {
	return c.sinceBreak >= c.rules.MaxDrivingBeforeBreak
}

// DayExhausted reports whether only a full rest allows more driving today.
func (c *Clock) DayExhausted() bool {
	return c.drivingToday >= c.rules.MaxDrivingPerDay || c.WindowHeadroom() <= 0
}

// Advance records minutes spent in status.
//
// Work (driving, on duty) counts against the window and the cycle; driving
// also counts against the daily and since-break limits. Any non-driving
// interval of at least BreakMinutes clears the since-break counter. An
// off-duty or sleeper interval of at least MinRestReset starts a new duty day.
func (c *Clock) Advance(status domain.DutyStatus, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("hos.Clock.Advance: %w: %d minutes", domain.ErrClockUnderflow, minutes)
	}
	if minutes == 0 {
		return nil
	}
	c.status = status

	switch status {
	case domain.Driving:
		c.drivingToday += minutes
		c.sinceBreak += minutes
		c.cycleUsed += minutes
		c.extendWindow(minutes)
	case domain.OnDuty:
		c.cycleUsed += minutes
		c.extendWindow(minutes)
		if minutes >= c.rules.BreakMinutes {
			c.sinceBreak = 0
		}
	case domain.OffDuty, domain.Sleeper:
		if minutes >= c.rules.MinRestReset {
			c.drivingToday = 0
			c.windowToday = 0
			c.windowOpen = false
			c.sinceBreak = 0
			return nil
		}
		if c.windowOpen {
			c.windowToday += minutes
		}
		if minutes >= c.rules.BreakMinutes {
			c.sinceBreak = 0
		}
	default:
		return fmt.Errorf("hos.Clock.Advance: %w: unknown duty status %q", domain.ErrValidation, status)
	}
	return nil
}

func (c *Clock) extendWindow(minutes int) {
	c.windowOpen = true
	c.windowToday += minutes
}
