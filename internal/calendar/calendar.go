// Package calendar builds the month grid used to browse and pick dates.
// Navigation never moves past the current month.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/editor"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
)

const monthLayout = "2006-01"

// Day is one cell of the grid.
type Day struct {
	Date     string
	Day      int
	InMonth  bool
	IsToday  bool
	IsFuture bool
	Entry    *models.DailyEntry
}

// HasEntry reports whether a stored entry exists for the day.
func (d Day) HasEntry() bool { return d.Entry != nil }

// MonthView is a Sunday-first grid of whole weeks covering one month.
type MonthView struct {
	Month   time.Time // first day of the month, UTC
	Weeks   [][7]Day
	Entries int
}

// Title is e.g. "January 2024".
func (m MonthView) Title() string {
	return m.Month.Format("January 2006")
}

// Find returns the in-month cell for date.
func (m MonthView) Find(date string) (Day, bool) {
	for _, w := range m.Weeks {
		for _, d := range w {
			if d.InMonth && d.Date == date {
				return d, true
			}
		}
	}
	return Day{}, false
}

// StartOfMonth truncates date (YYYY-MM-DD) to the first of its month.
func StartOfMonth(date string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return time.Time{}, errors.Invalid("date", "%q is not a YYYY-MM-DD date", date)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, errors.Invalid("month", "%q is not a YYYY-MM month", s)
	}
	return t, nil
}

// Month loads the grid for the month containing month. Cells after today
// are marked future.
func Month(ctx context.Context, store storage.Provider, month time.Time, today string) (MonthView, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	entries, err := store.GetEntriesInRange(ctx, first.Format(constants.DateFormat), last.Format(constants.DateFormat))
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to load %s: %w", first.Format(monthLayout), err)
	}
	byDate := make(map[string]*models.DailyEntry, len(entries))
	for i := range entries {
		byDate[entries[i].Date] = &entries[i]
	}

	start := first.AddDate(0, 0, -int(first.Weekday()))
	view := MonthView{Month: first, Entries: len(entries)}
	for cur := start; !cur.After(last); {
		var week [7]Day
		for i := range week {
			date := cur.Format(constants.DateFormat)
			inMonth := cur.Month() == first.Month()
			week[i] = Day{
				Date:     date,
				Day:      cur.Day(),
				InMonth:  inMonth,
				IsToday:  date == today,
				IsFuture: date > today,
			}
			if inMonth {
				week[i].Entry = byDate[date]
			}
			cur = cur.AddDate(0, 0, 1)
		}
		view.Weeks = append(view.Weeks, week)
	}
	return view, nil
}

// Prev returns the previous month. Going back is always allowed.
func Prev(month time.Time) time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0)
}

// Next returns the following month, or false when it would start after
// the current month.
func Next(month time.Time, today string) (time.Time, bool) {
	cur, err := StartOfMonth(today)
	if err != nil {
		return month, false
	}
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	if next.After(cur) {
		return month, false
	}
	return next, true
}

// CanEdit is false for dates after today.
func CanEdit(date, today string) bool {
	return date <= today
}

// Delete removes the entry for date through the editor.
func Delete(ctx context.Context, ed *editor.Editor, date string) error {
	if !CanEdit(date, ed.Today()) {
		return errors.ErrFutureDate
	}
	return ed.DeleteDate(ctx, date)
}
