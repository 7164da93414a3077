// internal/models/schedule.go
package models

// PeriodPoint is one end of an opening period. Day 0 is Monday.
// A nil field means the provider omitted it.
type PeriodPoint struct {
	Day    *int `json:"day,omitempty"`
	Hour   *int `json:"hour,omitempty"`
	Minute *int `json:"minute,omitempty"`
}

// Complete reports whether day, hour and minute are all present.
func (p PeriodPoint) Complete() bool {
	return p.Day != nil && p.Hour != nil && p.Minute != nil
}

// Period is a single open interval within a week. A nil Close means the
// place stays open for 24 hours after Open.
type Period struct {
	Open  PeriodPoint  `json:"open"`
	Close *PeriodPoint `json:"close,omitempty"`
}

type WeeklySchedule struct {
	Periods []Period `json:"periods,omitempty"`
}

func (s WeeklySchedule) Empty() bool {
	return len(s.Periods) == 0
}

// At builds a fully specified PeriodPoint.
func At(day, hour, minute int) PeriodPoint {
	return PeriodPoint{Day: &day, Hour: &hour, Minute: &minute}
}

// ClosesAt is At returning a pointer, for Period.Close.
func ClosesAt(day, hour, minute int) *PeriodPoint {
	p := At(day, hour, minute)
	return &p
}
