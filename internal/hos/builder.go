package hos

import (
	"fmt"
	"math"
	"time"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Locator reports where the driver is after driving the given number of
// minutes of the current activity. pos may be nil when unknown.
type Locator func(driven int) (label string, pos *domain.Coordinates)

// Activity is one requested unit of work for the Builder.
//
// Driving activities are divisible: the Builder interrupts them with breaks
// and rests as required. Every other activity is emitted as a whole.
type Activity struct {
	Kind     domain.SegmentKind
	Status   domain.DutyStatus
	Minutes  int
	Location string
	Notes    string
	Position *domain.Coordinates

	// Miles is the distance covered by a driving activity. It is spread over
	// the emitted driving segments in proportion to their length.
	Miles float64

	// Locate, when set, places driving segments and the interruptions
	// inserted between them. Without it Location is used throughout.
	Locate Locator
}

// Builder turns activities into compliant segments, advancing its Clock as
// it commits each one.
type Builder struct {
	rules    Rules
	clock    *Clock
	cursor   time.Time
	segments []domain.Segment
	stops    []domain.RouteStop
}

// NewBuilder returns a Builder whose first segment starts at start.
func NewBuilder(rules Rules, clock *Clock, start time.Time) *Builder {
	return &Builder{rules: rules, clock: clock, cursor: start}
}

// Cursor is the end of the last emitted segment.
func (b *Builder) Cursor() time.Time { return b.cursor }

// Segments returns the segments emitted so far, split at midnight.
func (b *Builder) Segments() []domain.Segment { return b.segments }

// Stops returns the route stops emitted so far.
func (b *Builder) Stops() []domain.RouteStop { return b.stops }

// Add schedules a single activity. Zero-length activities emit nothing.
// On ErrInfeasibleSchedule the Builder must be discarded.
func (b *Builder) Add(a Activity) error {
	if a.Minutes < 0 {
		return fmt.Errorf("hos.Builder.Add: %w: %s has %d minutes", domain.ErrClockUnderflow, a.Kind, a.Minutes)
	}
	if a.Minutes == 0 {
		return nil
	}
	if a.Status == domain.Driving {
		return b.drive(a)
	}
	return b.whole(a)
}

func (b *Builder) drive(a Activity) error {
	remaining, driven := a.Minutes, 0
	milesDone := 0.0

	for remaining > 0 {
		label, pos := b.locate(a, driven)

		switch {
		case b.clock.CycleHeadroom() <= 0:
			return fmt.Errorf("hos.Builder.Add: %w: cycle limit of %d hours reached with %d driving minutes left",
				domain.ErrInfeasibleSchedule, b.rules.MaxCycle/60, remaining)
		case b.clock.DayExhausted():
			if err := b.rest(label, pos); err != nil {
				return err
			}
			continue
		case b.clock.NeedsBreak():
			var err error
			if b.clock.WindowHeadroom() <= b.rules.BreakMinutes {
				err = b.rest(label, pos)
			} else {
				err = b.breakFor(label, pos)
			}
			if err != nil {
				return err
			}
			continue
		}

		allowed := min(remaining, b.clock.DrivingHeadroom())

		// The last chunk takes whatever distance is left so rounding never
		// loses miles.
		miles := a.Miles - milesDone
		if allowed < remaining {
			miles = a.Miles * float64(driven+allowed) / float64(a.Minutes)
			miles -= milesDone
		}

		seg := domain.Segment{
			Status:   domain.Driving,
			Kind:     a.Kind,
			Location: label,
			Notes:    a.Notes,
			Miles:    miles,
			Position: pos,
		}
		if err := b.emit(seg, allowed); err != nil {
			return err
		}

		milesDone += miles
		driven += allowed
		remaining -= allowed
	}
	return nil
}

func (b *Builder) whole(a Activity) error {
	if a.Status.IsWork() {
		if a.Minutes > b.clock.CycleHeadroom() {
			return fmt.Errorf("hos.Builder.Add: %w: %s needs %d minutes, cycle has %d left",
				domain.ErrInfeasibleSchedule, a.Kind, a.Minutes, b.clock.CycleHeadroom())
		}
		if a.Minutes > b.rules.MaxOnDutyWindow {
			return fmt.Errorf("hos.Builder.Add: %w: %s needs %d minutes, longer than the %d-minute on-duty window",
				domain.ErrInfeasibleSchedule, a.Kind, a.Minutes, b.rules.MaxOnDutyWindow)
		}
		if a.Minutes > b.clock.WindowHeadroom() {
			if err := b.rest(a.Location, a.Position); err != nil {
				return err
			}
		}
	}

	seg := domain.Segment{
		Status:   a.Status,
		Kind:     a.Kind,
		Location: a.Location,
		Notes:    a.Notes,
		Position: a.Position,
	}
	return b.emit(seg, a.Minutes)
}

func (b *Builder) rest(label string, pos *domain.Coordinates) error {
	seg := domain.Segment{
		Status:   domain.Sleeper,
		Kind:     domain.KindRest,
		Location: label,
		Notes:    fmt.Sprintf("%d-hour rest period", b.rules.MinRestReset/60),
		Position: pos,
	}
	return b.emit(seg, b.rules.MinRestReset)
}

func (b *Builder) breakFor(label string, pos *domain.Coordinates) error {
	seg := domain.Segment{
		Status:   domain.OnDuty,
		Kind:     domain.KindBreak,
		Location: label,
		Notes:    fmt.Sprintf("%d-minute break", b.rules.BreakMinutes),
		Position: pos,
	}
	return b.emit(seg, b.rules.BreakMinutes)
}

func (b *Builder) locate(a Activity, driven int) (string, *domain.Coordinates) {
	if a.Locate == nil {
		return a.Location, a.Position
	}
	return a.Locate(driven)
}

// emit commits one logical segment of the given length: the clock advances
// once for the whole interval, then the segment is cut at every midnight it
// crosses so that each piece belongs to a single calendar day.
func (b *Builder) emit(seg domain.Segment, minutes int) error {
	if err := b.clock.Advance(seg.Status, minutes); err != nil {
		return err
	}

	start := b.cursor
	end := start.Add(time.Duration(minutes) * time.Minute)

	if seg.Kind.IsStop() {
		b.stops = append(b.stops, domain.RouteStop{
			Kind:        seg.Kind,
			Location:    seg.Location,
			Coordinates: seg.Position,
			ArriveAt:    start,
			Minutes:     minutes,
		})
	}

	total := seg.Miles
	milesDone := 0.0
	for s := start; s.Before(end); {
		e := nextMidnight(s)
		if e.After(end) {
			e = end
		}

		piece := seg
		piece.Start, piece.End = s, e
		if total != 0 {
			piece.Miles = total - milesDone
			if e.Before(end) {
				piece.Miles = total * float64(e.Sub(start)) / float64(end.Sub(start))
				piece.Miles -= milesDone
			}
			milesDone += piece.Miles
			piece.Miles = round2(piece.Miles)
		}
		b.segments = append(b.segments, piece)
		s = e
	}

	b.cursor = end
	return nil
}

// nextMidnight returns 00:00 of the calendar day after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// startOfDay returns 00:00 of t's calendar day, in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
