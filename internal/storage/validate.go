package storage

import (
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/models"
)

// ValidateEntry rejects entries a backend must never persist: a malformed
// date, an unknown category, or a count below 1.
func ValidateEntry(entry *models.DailyEntry) error {
	if err := models.ValidateDate(entry.Date); err != nil {
		return err
	}
	for _, kind := range models.Kinds() {
		seen := make(map[string]bool)
		for _, it := range entry.Items(kind) {
			if !kind.Valid(it.Category) {
				return errors.Invalid("category", "unknown %s category %q", kind, it.Category)
			}
			if it.Count < 1 {
				return errors.Invalid("count", "%s/%s has count %d", kind, it.Category, it.Count)
			}
			if seen[it.Category] {
				return errors.Invalid("category", "%s/%s appears twice on %s", kind, it.Category, entry.Date)
			}
			seen[it.Category] = true
		}
	}
	return nil
}
