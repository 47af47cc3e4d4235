package core

import (
	"fmt"
	"time"
)

// PeriodConfig is the user's monthly cycle: day-of-month boundaries, both in
// [1,31]. StartDay may be numerically greater than EndDay (a cycle spanning a
// month boundary, e.g. 25th to 24th).
type PeriodConfig struct {
	StartDay int
	EndDay   int
}

// PeriodRange is a concrete window anchored to a reference instant. Start is
// midnight of the first day, End the last millisecond of the last day. It is
// derived state, recomputed on every query, never persisted.
type PeriodRange struct {
	Start time.Time
	End   time.Time
}

// DefaultPeriodConfig is the cycle users get before touching settings.
var DefaultPeriodConfig = PeriodConfig{StartDay: 25, EndDay: 24}

// Validate enforces the 1..31 bounds. This runs at the settings-save boundary
// only; CurrentRange deliberately accepts whatever it is given.
func (c PeriodConfig) Validate() error {
	if c.StartDay < 1 || c.StartDay > 31 {
		return fmt.Errorf("start day %d: %w", c.StartDay, ErrInvalidDay)
	}
	if c.EndDay < 1 || c.EndDay > 31 {
		return fmt.Errorf("end day %d: %w", c.EndDay, ErrInvalidDay)
	}
	return nil
}

// CurrentRange computes the budget window containing now.
//
// If now's day-of-month has reached StartDay, the period starts this calendar
// month and ends on EndDay of the next; otherwise it started on StartDay of
// the previous month and ends on EndDay of this one. The start is therefore
// always anchored one calendar month before the end, which handles the
// wrap-across-month-boundary configuration without a special case.
//
// Days exceeding the target month's length roll over into the following month
// through time.Date normalization (31 in a 30-day month becomes the 1st of the
// next). That overflow is accepted behavior and is not clamped.
//
// Pure function: identical (config, now) inputs yield an identical range.
func CurrentRange(cfg PeriodConfig, now time.Time) PeriodRange {
	year, month, day := now.Date()
	loc := now.Location()

	var start, end time.Time
	if day >= cfg.StartDay {
		start = time.Date(year, month, cfg.StartDay, 0, 0, 0, 0, loc)
		end = time.Date(year, month+1, cfg.EndDay, 23, 59, 59, 999000000, loc)
	} else {
		start = time.Date(year, month-1, cfg.StartDay, 0, 0, 0, 0, loc)
		end = time.Date(year, month, cfg.EndDay, 23, 59, 59, 999000000, loc)
	}
	return PeriodRange{Start: start, End: end}
}

// PreviousRange returns the window one calendar month before r. Used when
// archiving a period that has just rolled over.
func PreviousRange(r PeriodRange) PeriodRange {
	return PeriodRange{
		Start: r.Start.AddDate(0, -1, 0),
		End:   r.End.AddDate(0, -1, 0),
	}
}

// InRange reports whether t falls within r, inclusive on both ends.
func InRange(t time.Time, r PeriodRange) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Key identifies a period by its start date, e.g. "2024-2-25". Stored per
// user to detect rollover into a new period.
func (r PeriodRange) Key() string {
	y, m, d := r.Start.Date()
	return fmt.Sprintf("%d-%d-%d", y, int(m), d)
}

// FormatRange renders a range as "Jan 25 – Feb 24", appending the year when
// the window crosses a year boundary ("Dec 25 – Jan 24, 2025").
func FormatRange(r PeriodRange) string {
	startStr := r.Start.Format("Jan 2")
	endStr := r.End.Format("Jan 2")
	if r.Start.Year() != r.End.Year() {
		return fmt.Sprintf("%s – %s, %d", startStr, endStr, r.End.Year())
	}
	return fmt.Sprintf("%s – %s", startStr, endStr)
}
