package hydrobricks

import (
	"math"
	"time"
)

// StepUnit is the unit a model spec's time step is expressed in.
type StepUnit int

const (
	StepMinute StepUnit = iota
	StepHour
	StepDay
	StepWeek
)

// ParseStepUnit maps the model spec's step-unit string to a StepUnit.
func ParseStepUnit(s string) (StepUnit, error) {
	switch s {
	case "minute":
		return StepMinute, nil
	case "hour":
		return StepHour, nil
	case "day":
		return StepDay, nil
	case "week":
		return StepWeek, nil
	default:
		return 0, newErr(KindInvalidArgument, "timer:parse_step_unit", "unrecognised step unit: "+s)
	}
}

// Days returns how many days one unit of u represents.
func (u StepUnit) Days() float64 {
	switch u {
	case StepMinute:
		return 1.0 / (24 * 60)
	case StepHour:
		return 1.0 / 24
	case StepDay:
		return 1
	case StepWeek:
		return 7
	default:
		return 1
	}
}

// mjdEpoch is 1858-11-17 00:00 UTC, the Modified Julian Day origin.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// MJD is a Modified Julian Day: days (fractional) since 1858-11-17.
type MJD float64

// ToMJD converts a calendar time to its Modified Julian Day value.
func ToMJD(t time.Time) MJD {
	return MJD(t.UTC().Sub(mjdEpoch).Hours() / 24)
}

// Time converts an MJD value back to a calendar time.
func (m MJD) Time() time.Time {
	return mjdEpoch.Add(time.Duration(float64(m) * 24 * float64(time.Hour)))
}

// Date returns the (year, month, day) of this MJD, ignoring the
// fractional time-of-day component — used by action date matching.
func (m MJD) Date() (year int, month time.Month, day int) {
	t := m.Time()
	return t.Year(), t.Month(), t.Day()
}

// ParseISODate parses a "YYYY-MM-DD" date string into an MJD value.
func ParseISODate(s string) (MJD, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, wrapErr(KindInvalidArgument, "timer:parse_iso_date", "cannot parse date "+s, err)
	}
	return ToMJD(t), nil
}

// Timer tracks the simulation's current date and fixed step size. The
// step size is passed explicitly through the solver call chain rather
// than read from a package-level variable.
type Timer struct {
	Start    MJD
	End      MJD
	Current  MJD
	StepDays float64
	stepIdx  int
}

// NewTimer builds a Timer from a start/end date and a step expressed
// in stepCount units of unit.
func NewTimer(start, end MJD, stepCount int, unit StepUnit) *Timer {
	return &Timer{
		Start:    start,
		End:      end,
		Current:  start,
		StepDays: float64(stepCount) * unit.Days(),
	}
}

// Done reports whether the simulation has run past its end date.
func (t *Timer) Done() bool {
	return t.Current > t.End+1e-9
}

// Advance moves the timer forward by one step.
func (t *Timer) Advance() {
	t.Current = MJD(float64(t.Current) + t.StepDays)
	t.stepIdx++
}

// StepIndex returns the zero-based index of the current step.
func (t *Timer) StepIndex() int { return t.stepIdx }

// DayOfYear returns the current date's ordinal day (1-366), used by
// seasonal parameter laws such as the SWAT snow-to-ice process.
func (t *Timer) DayOfYear() int {
	return t.Current.Time().YearDay()
}

// CurrentMonth returns the current date's calendar month (1-12), used
// by monthly-varying keyed parameter laws.
func (t *Timer) CurrentMonth() int {
	_, m, _ := t.Current.Date()
	return int(m)
}

// StepCount returns the total number of steps in [Start, End].
func (t *Timer) StepCount() int {
	return int(math.Round(float64(t.End-t.Start)/t.StepDays)) + 1
}
