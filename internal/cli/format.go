package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodmood/internal/models"
)

// FormatItems renders one collection compactly, e.g. "🍎×2 🥦".
func FormatItems(entry *models.DailyEntry, kind models.Kind) string {
	items := entry.Items(kind)
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		emoji := it.Emoji
		if emoji == "" {
			emoji = kind.Emoji(it.Category)
		}
		if it.Count > 1 {
			parts = append(parts, fmt.Sprintf("%s×%d", emoji, it.Count))
		} else {
			parts = append(parts, emoji)
		}
	}
	return strings.Join(parts, " ")
}

// Bar draws a horizontal bar of width cells scaled against max.
func Bar(count, max, width int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * width / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// Confirm asks a yes/no question on the terminal.
var Confirm = func(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
