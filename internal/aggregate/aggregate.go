// Package aggregate turns stored entries into chart data: per-category
// totals, per-date series and the week/month/all windows.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
)

// Total is one category's sum over a set of entries.
type Total struct {
	Category string
	Label    string
	Emoji    string
	Count    int
}

// Point is one date's counts, zero-filled for every category of the kind.
type Point struct {
	Date   string
	Counts map[string]int
}

// CategoryTotals sums kind's counts across entries. Every category of the
// enumeration is present, in catalog order, including zeros.
func CategoryTotals(entries []models.DailyEntry, kind models.Kind) []Total {
	sums := TotalsMap(entries, kind)
	cats := kind.Categories()
	out := make([]Total, 0, len(cats))
	for _, c := range cats {
		out = append(out, Total{
			Category: c,
			Label:    kind.Label(c),
			Emoji:    kind.Emoji(c),
			Count:    sums[c],
		})
	}
	return out
}

// TotalsMap is CategoryTotals keyed by category.
func TotalsMap(entries []models.DailyEntry, kind models.Kind) map[string]int {
	sums := make(map[string]int, len(kind.Categories()))
	for _, c := range kind.Categories() {
		sums[c] = 0
	}
	for i := range entries {
		for _, it := range entries[i].Items(kind) {
			if _, ok := sums[it.Category]; ok {
				sums[it.Category] += it.Count
			}
		}
	}
	return sums
}

// TimeSeries returns one point per distinct date, ascending.
func TimeSeries(entries []models.DailyEntry, kind models.Kind) []Point {
	byDate := make(map[string]map[string]int)
	for i := range entries {
		counts, ok := byDate[entries[i].Date]
		if !ok {
			counts = make(map[string]int)
			for _, c := range kind.Categories() {
				counts[c] = 0
			}
			byDate[entries[i].Date] = counts
		}
		for _, it := range entries[i].Items(kind) {
			if _, known := counts[it.Category]; known {
				counts[it.Category] += it.Count
			}
		}
	}

	points := make([]Point, 0, len(byDate))
	for date, counts := range byDate {
		points = append(points, Point{Date: date, Counts: counts})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// NonZero drops zero totals, as the mood pie does.
func NonZero(totals []Total) []Total {
	out := make([]Total, 0, len(totals))
	for _, t := range totals {
		if t.Count > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Sum adds up totals.
func Sum(totals []Total) int {
	n := 0
	for _, t := range totals {
		n += t.Count
	}
	return n
}

// Window selects the date range charts are computed over.
type Window int

const (
	WindowWeek Window = iota
	WindowMonth
	WindowAll
)

func (w Window) String() string {
	switch w {
	case WindowWeek:
		return "week"
	case WindowMonth:
		return "month"
	default:
		return "all"
	}
}

// Label is the selector text shown in the UI.
func (w Window) Label() string {
	switch w {
	case WindowWeek:
		return "Last Week"
	case WindowMonth:
		return "Last Month"
	default:
		return "All Time"
	}
}

// Windows returns the selectable windows in display order.
func Windows() []Window {
	return []Window{WindowWeek, WindowMonth, WindowAll}
}

// ParseWindow accepts "week", "month" or "all".
func ParseWindow(s string) (Window, error) {
	switch s {
	case "week":
		return WindowWeek, nil
	case "month":
		return WindowMonth, nil
	case "all", "":
		return WindowAll, nil
	}
	return WindowAll, fmt.Errorf("unknown window %q (want week, month or all)", s)
}

// Days is the window length, 0 for WindowAll.
func (w Window) Days() int {
	switch w {
	case WindowWeek:
		return constants.WeekWindowDays
	case WindowMonth:
		return constants.MonthWindowDays
	}
	return 0
}

// Range returns the inclusive [today-N days, today] bounds. ok is false
// for WindowAll, which is unbounded.
func (w Window) Range(today string) (start, end string, ok bool, err error) {
	if w == WindowAll {
		return "", "", false, nil
	}
	t, err := time.Parse(constants.DateFormat, today)
	if err != nil {
		return "", "", false, fmt.Errorf("invalid today %q: %w", today, err)
	}
	return t.AddDate(0, 0, -w.Days()).Format(constants.DateFormat), today, true, nil
}

// Load fetches the entries inside window.
func Load(ctx context.Context, store storage.Provider, w Window, today string) ([]models.DailyEntry, error) {
	start, end, bounded, err := w.Range(today)
	if err != nil {
		return nil, err
	}
	if !bounded {
		return store.GetAllEntries(ctx)
	}
	return store.GetEntriesInRange(ctx, start, end)
}

// Summary is everything the charts view renders.
type Summary struct {
	Window     Window
	Entries    int
	Foods      []Total
	Activities []Total
	Moods      []Total
	MoodSeries []Point
}

// Totals returns the totals for kind.
func (s Summary) Totals(kind models.Kind) []Total {
	switch kind {
	case models.KindFood:
		return s.Foods
	case models.KindActivity:
		return s.Activities
	default:
		return s.Moods
	}
}

// Summarize builds a Summary from already loaded entries.
func Summarize(w Window, entries []models.DailyEntry) Summary {
	return Summary{
		Window:     w,
		Entries:    len(entries),
		Foods:      CategoryTotals(entries, models.KindFood),
		Activities: CategoryTotals(entries, models.KindActivity),
		Moods:      CategoryTotals(entries, models.KindMood),
		MoodSeries: TimeSeries(entries, models.KindMood),
	}
}

// LoadSummary is Load followed by Summarize.
func LoadSummary(ctx context.Context, store storage.Provider, w Window, today string) (Summary, error) {
	entries, err := Load(ctx, store, w, today)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(w, entries), nil
}
