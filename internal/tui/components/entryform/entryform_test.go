package entryform

import (
	"strings"
	"testing"

	"github.com/julianstephens/foodmood/internal/models"
)

func TestHitTest(t *testing.T) {
	m := New()

	tests := []struct {
		name   string
		x, y   int
		want   string
		wantOK bool
	}{
		{"food title", 3, 0, "", false},
		{"first food", 0, 1, "fruits", true},
		{"second column", CellWidth, 1, "vegetables", true},
		{"second food row", 2*CellWidth + 5, 2, "salty", true},
		{"spacer", 3, 3, "", false},
		{"activity title", 3, 4, "", false},
		{"first activity", 3, 5, "screens", true},
		{"first mood", 3, 9, "sleepy", true},
		{"last mood", CellWidth + 1, 11, "bored", true},
		{"empty slot after last mood", 2*CellWidth + 1, 11, "", false},
		{"right of grid", Columns * CellWidth, 1, "", false},
		{"left of grid", -1, 1, "", false},
		{"below grid", 0, Height(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := m.HitTest(tt.x, tt.y)
			if ok != tt.wantOK {
				t.Fatalf("HitTest(%d, %d) ok = %v, want %v", tt.x, tt.y, ok, tt.wantOK)
			}
			if c.Category != tt.want {
				t.Errorf("HitTest(%d, %d) = %q, want %q", tt.x, tt.y, c.Category, tt.want)
			}
		})
	}
}

func TestHeightMatchesView(t *testing.T) {
	m := New()
	m.SetEntry(models.NewEntry("2024-01-15"), false)

	lines := strings.Count(m.View(), "\n") + 1
	if lines != Height() {
		t.Errorf("View has %d lines, Height() = %d", lines, Height())
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name  string
		start string
		moves [][2]int
		want  string
	}{
		{"right", "fruits", [][2]int{{1, 0}}, "vegetables"},
		{"stops at row end", "meat", [][2]int{{1, 0}}, "meat"},
		{"stops at left edge", "fruits", [][2]int{{-1, 0}}, "fruits"},
		{"down within section", "vegetables", [][2]int{{0, 1}}, "sweet"},
		{"down into next section", "salty", [][2]int{{0, 1}}, "school"},
		{"up into previous section", "sleepy", [][2]int{{0, -1}}, "outside"},
		{"clamps to short row", "calm", [][2]int{{0, 1}}, "bored"},
		{"stops at top", "fruits", [][2]int{{0, -1}}, "fruits"},
		{"stops at bottom", "excited", [][2]int{{0, 1}}, "excited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.Select(tt.start)
			for _, mv := range tt.moves {
				m.Move(mv[0], mv[1])
			}
			if got := m.Selected().Category; got != tt.want {
				t.Errorf("selected = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSetEntryClearsHoldOnDateChange(t *testing.T) {
	m := New()
	m.SetEntry(models.NewEntry("2024-01-15"), false)
	m.SetHold("fruits", 1, 0.5)

	m.SetEntry(models.NewEntry("2024-01-15"), false)
	if m.holding != "fruits" {
		t.Error("same date should keep the hold")
	}

	m.SetEntry(models.NewEntry("2024-01-14"), false)
	if m.holding != "" {
		t.Error("new date should clear the hold")
	}
}

func TestViewShowsCounts(t *testing.T) {
	entry := models.NewEntry("2024-01-15")
	entry.Add(models.KindFood, "fruits")
	entry.Add(models.KindFood, "fruits")

	m := New()
	m.SetEntry(entry, false)
	if c := (Cell{Kind: models.KindFood, Category: "fruits"}); m.Count(c) != 2 {
		t.Errorf("Count = %d, want 2", m.Count(c))
	}
	if !strings.Contains(m.View(), "×2") {
		t.Error("badge missing from view")
	}
}

func TestGauge(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, "▱▱▱▱"},
		{0.3, "▰▱▱▱"},
		{0.5, "▰▰▱▱"},
		{1, "▰▰▰▰"},
		{1.5, "▰▰▰▰"},
	}
	for _, tt := range tests {
		if got := gauge(tt.p); got != tt.want {
			t.Errorf("gauge(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}
