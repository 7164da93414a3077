// Package schedule decides whether a place is open at an instant from its
// weekly opening periods.
package schedule

import (
	"time"

	"reco-workers/internal/models"
)

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay
)

type Status int

const (
	Unknown Status = iota
	Open
	Closed
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Ptr converts the status to the tri-state *bool used on candidates.
func (s Status) Ptr() *bool {
	switch s {
	case Open:
		v := true
		return &v
	case Closed:
		v := false
		return &v
	default:
		return nil
	}
}

// LoadLocation returns the named zone, or a fixed +09:00 zone when the zone
// database is not available.
func LoadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// WeekMinutes returns minutes since Monday 00:00 of t's week in t's location.
func WeekMinutes(t time.Time) int {
	day := (int(t.Weekday()) + 6) % 7
	return day*minutesPerDay + t.Hour()*60 + t.Minute()
}

// IsOpenAt evaluates the schedule at instant, which must already be in the
// service timezone. An empty schedule is Unknown.
func IsOpenAt(s models.WeeklySchedule, instant time.Time) Status {
	if s.Empty() {
		return Unknown
	}

	wm := WeekMinutes(instant)
	for _, p := range s.Periods {
		open, close, ok := bounds(p)
		if !ok {
			continue
		}
		for _, c := range [2]int{wm, wm + minutesPerWeek} {
			if open <= c && c < close {
				return Open
			}
		}
	}
	return Closed
}

// bounds returns the period as week-minute offsets. A close point without
// hour and minute is ignored and the period lasts a day; a close at or
// before the open wraps into the following week.
func bounds(p models.Period) (open, close int, ok bool) {
	if !p.Open.Complete() {
		return 0, 0, false
	}
	open = *p.Open.Day*minutesPerDay + *p.Open.Hour*60 + *p.Open.Minute

	if p.Close != nil && p.Close.Hour != nil && p.Close.Minute != nil {
		day := *p.Open.Day
		if p.Close.Day != nil {
			day = *p.Close.Day
		}
		close = day*minutesPerDay + *p.Close.Hour*60 + *p.Close.Minute
	} else {
		close = open + minutesPerDay
	}

	if close <= open {
		close += minutesPerWeek
	}
	return open, close, true
}

// Evaluator computes the now / one-hour-ahead pair in a fixed timezone.
type Evaluator struct {
	loc *time.Location
	now func() time.Time
}

func NewEvaluator(loc *time.Location) *Evaluator {
	return &Evaluator{loc: loc, now: time.Now}
}

// WithClock replaces the clock, for tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	return &Evaluator{loc: e.loc, now: now}
}

func (e *Evaluator) Now() time.Time {
	return e.now().In(e.loc)
}

// Evaluate returns the status now and one hour from now.
func (e *Evaluator) Evaluate(s models.WeeklySchedule) (now, inOneHour Status) {
	t := e.Now()
	return IsOpenAt(s, t), IsOpenAt(s, t.Add(time.Hour))
}
