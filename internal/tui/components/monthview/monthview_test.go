package monthview

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/models"
)

// week builds one in-month row starting at the given January 2024 day.
func week(start int, today int, entries map[int]*models.DailyEntry) [7]calendar.Day {
	var w [7]calendar.Day
	for i := range w {
		d := start + i
		date := time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		w[i] = calendar.Day{
			Date:     date,
			Day:      d,
			InMonth:  true,
			IsToday:  d == today,
			IsFuture: d > today,
			Entry:    entries[d],
		}
	}
	return w
}

func setupView() calendar.MonthView {
	entry := models.NewEntry("2024-01-14")
	entry.Add(models.KindMood, "happy")
	entry.Add(models.KindFood, "fruits")
	entry.Add(models.KindFood, "fruits")
	return calendar.MonthView{
		Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Weeks: [][7]calendar.Day{week(14, 15, map[int]*models.DailyEntry{14: &entry})},
	}
}

func TestSetViewMovesCursorIntoMonth(t *testing.T) {
	m := New()
	m.SetCursor("2023-12-31")
	m.SetView(setupView())
	if m.Cursor() != "2024-01-01" {
		t.Errorf("cursor = %s, want 2024-01-01", m.Cursor())
	}

	m.SetCursor("2024-01-16")
	m.SetView(setupView())
	if m.Cursor() != "2024-01-16" {
		t.Errorf("cursor = %s, want it kept", m.Cursor())
	}
}

func TestShift(t *testing.T) {
	m := New()
	m.SetCursor("2024-01-31")
	if got := m.Shift(1); got != "2024-02-01" {
		t.Errorf("Shift(1) = %s", got)
	}
	if got := m.Shift(-7); got != "2024-01-24" {
		t.Errorf("Shift(-7) = %s", got)
	}
	if m.Cursor() != "2024-01-31" {
		t.Error("Shift moved the cursor")
	}
}

func TestViewDetail(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
		want   []string
	}{
		{"logged day", "2024-01-14", []string{"14•", "Sunday, January 14", "🍎×2", "😊"}},
		{"empty day", "2024-01-15", []string{"Nothing logged"}},
		{"future day", "2024-01-20", []string{"Future dates cannot be edited"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.SetView(setupView())
			m.SetCursor(tt.cursor)
			view := m.View()
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("view missing %q:\n%s", w, view)
				}
			}
		})
	}
}

func TestViewBeforeLoad(t *testing.T) {
	if got := New().View(); got != "Loading calendar..." {
		t.Errorf("View() = %q", got)
	}
}
