package recurrence

import (
	"fmt"
	"time"
)

// Window is a half-open UTC range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the window covering the given calendar month.
func MonthWindow(year, month int) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, fmt.Errorf("month %d must be between 1 and 12: %w", month, ErrInvalidArgument)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// WeekWindow returns the Sunday-anchored week numbered as strftime's %U does:
// week 1 begins on the first Sunday of the year.
func WeekWindow(year, week int) (Window, error) {
	if week < 1 || week > 53 {
		return Window{}, fmt.Errorf("week %d must be between 1 and 53: %w", week, ErrInvalidArgument)
	}
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	firstSunday := jan1.AddDate(0, 0, (7-int(jan1.Weekday()))%7)
	start := firstSunday.AddDate(0, 0, 7*(week-1))
	return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
}

// Clip keeps the times that fall inside the window.
func (w Window) Clip(times []time.Time) []time.Time {
	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		if !t.Before(w.Start) && t.Before(w.End) {
			out = append(out, t)
		}
	}
	return out
}
