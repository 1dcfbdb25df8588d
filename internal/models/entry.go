package models

import (
	"time"

	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/errors"
)

type FoodItem struct {
	Category FoodCategory `json:"category"`
	Count    int          `json:"count"`
	Emoji    string       `json:"emoji"`
}

type ActivityItem struct {
	Type  ActivityType `json:"type"`
	Count int          `json:"count"`
	Emoji string       `json:"emoji"`
}

type MoodItem struct {
	Emotion Emotion `json:"emotion"`
	Count   int     `json:"count"`
	Emoji   string  `json:"emoji"`
}

// Item is the kind-agnostic view of a single tuple.
type Item struct {
	Category string
	Count    int
	Emoji    string
}

// DailyEntry is the record for one calendar date.
type DailyEntry struct {
	ID         int64          `json:"id,omitempty"`
	Date       string         `json:"date"`      // YYYY-MM-DD format
	Timestamp  int64          `json:"timestamp"` // Unix milliseconds of the last write
	Foods      []FoodItem     `json:"foods"`
	Activities []ActivityItem `json:"activities"`
	Moods      []MoodItem     `json:"moods"`
}

// ExportData is the envelope written by export and read by import.
type ExportData struct {
	Version    string       `json:"version"`
	ExportDate string       `json:"exportDate"`
	Entries    []DailyEntry `json:"entries"`
}

// NewEntry returns an unpersisted entry with empty collections.
func NewEntry(date string) DailyEntry {
	return DailyEntry{
		Date:       date,
		Foods:      []FoodItem{},
		Activities: []ActivityItem{},
		Moods:      []MoodItem{},
	}
}

// ValidateDate checks the YYYY-MM-DD layout.
func ValidateDate(date string) error {
	if date == "" {
		return errors.Invalid("date", "must not be empty")
	}
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return errors.Invalid("date", "%q is not a YYYY-MM-DD date", date)
	}
	return nil
}

// Persisted reports whether the entry has a store-assigned id.
func (e *DailyEntry) Persisted() bool {
	return e.ID != 0
}

// IsEmpty reports whether all three collections are empty.
func (e *DailyEntry) IsEmpty() bool {
	return len(e.Foods) == 0 && len(e.Activities) == 0 && len(e.Moods) == 0
}

// ModifiedAt converts Timestamp to a time.Time.
func (e *DailyEntry) ModifiedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (e *DailyEntry) Normalize() {
	if e.Foods == nil {
		e.Foods = []FoodItem{}
	}
	if e.Activities == nil {
		e.Activities = []ActivityItem{}
	}
	if e.Moods == nil {
		e.Moods = []MoodItem{}
	}
}

// Clone returns a deep copy.
func (e DailyEntry) Clone() DailyEntry {
	c := e
	c.Foods = append([]FoodItem{}, e.Foods...)
	c.Activities = append([]ActivityItem{}, e.Activities...)
	c.Moods = append([]MoodItem{}, e.Moods...)
	return c
}

// Items returns the tuples of one collection in stored order.
func (e *DailyEntry) Items(kind Kind) []Item {
	var out []Item
	switch kind {
	case KindFood:
		for _, f := range e.Foods {
			out = append(out, Item{Category: string(f.Category), Count: f.Count, Emoji: f.Emoji})
		}
	case KindActivity:
		for _, a := range e.Activities {
			out = append(out, Item{Category: string(a.Type), Count: a.Count, Emoji: a.Emoji})
		}
	case KindMood:
		for _, m := range e.Moods {
			out = append(out, Item{Category: string(m.Emotion), Count: m.Count, Emoji: m.Emoji})
		}
	}
	return out
}

// SetItems replaces one collection.
func (e *DailyEntry) SetItems(kind Kind, items []Item) {
	switch kind {
	case KindFood:
		e.Foods = make([]FoodItem, 0, len(items))
		for _, it := range items {
			e.Foods = append(e.Foods, FoodItem{Category: FoodCategory(it.Category), Count: it.Count, Emoji: it.Emoji})
		}
	case KindActivity:
		e.Activities = make([]ActivityItem, 0, len(items))
		for _, it := range items {
			e.Activities = append(e.Activities, ActivityItem{Type: ActivityType(it.Category), Count: it.Count, Emoji: it.Emoji})
		}
	case KindMood:
		e.Moods = make([]MoodItem, 0, len(items))
		for _, it := range items {
			e.Moods = append(e.Moods, MoodItem{Emotion: Emotion(it.Category), Count: it.Count, Emoji: it.Emoji})
		}
	}
}

// Count returns the tally for category, 0 when absent.
func (e *DailyEntry) Count(kind Kind, category string) int {
	for _, it := range e.Items(kind) {
		if it.Category == category {
			return it.Count
		}
	}
	return 0
}

// Add increments category, inserting a tuple with the fixed emoji when absent.
func (e *DailyEntry) Add(kind Kind, category string) {
	items := e.Items(kind)
	for i := range items {
		if items[i].Category == category {
			items[i].Count++
			e.SetItems(kind, items)
			return
		}
	}
	items = append(items, Item{Category: category, Count: 1, Emoji: kind.Emoji(category)})
	e.SetItems(kind, items)
}

// Remove decrements category. A tuple at count 1 is dropped so no tuple
// ever holds a count below 1. Removing an absent category changes nothing
// and reports false.
func (e *DailyEntry) Remove(kind Kind, category string) bool {
	items := e.Items(kind)
	for i := range items {
		if items[i].Category != category {
			continue
		}
		if items[i].Count > 1 {
			items[i].Count--
		} else {
			items = append(items[:i], items[i+1:]...)
		}
		e.SetItems(kind, items)
		return true
	}
	return false
}

// Total sums every tuple count across all collections.
func (e *DailyEntry) Total() int {
	n := 0
	for _, k := range Kinds() {
		for _, it := range e.Items(k) {
			n += it.Count
		}
	}
	return n
}
