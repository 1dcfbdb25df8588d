package entries

import (
	"fmt"

	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/models"
)

type AddCmd struct {
	Category string `arg:"" help:"Category to add, e.g. fruits, dance, happy or moods:calm."`
	Kind     string `help:"Collection (foods, activities, moods). Inferred from the category when omitted." short:"k"`
	Date     string `help:"Date to edit (YYYY-MM-DD, today, yesterday)." default:"today" short:"d"`
	Count    int    `help:"How many to add." default:"1" short:"n"`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	kind, category, err := cli.ResolveCategory(c.Kind, c.Category)
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}

	var entry models.DailyEntry
	for i := 0; i < c.Count; i++ {
		if entry, err = ctx.Editor().Add(ctx.Background(), date, kind, category); err != nil {
			return err
		}
	}

	ctx.Printf("✓ %s %s on %s (now %d)\n", kind.Emoji(category), kind.Label(category), date, entry.Count(kind, category))
	return nil
}

type RemoveCmd struct {
	Category string `arg:"" help:"Category to remove."`
	Kind     string `help:"Collection (foods, activities, moods). Inferred from the category when omitted." short:"k"`
	Date     string `help:"Date to edit (YYYY-MM-DD, today, yesterday)." default:"today" short:"d"`
	Count    int    `help:"How many to remove." default:"1" short:"n"`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	kind, category, err := cli.ResolveCategory(c.Kind, c.Category)
	if err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}

	entry, err := ctx.Editor().Load(ctx.Background(), date)
	if err != nil {
		return err
	}
	if entry.Count(kind, category) == 0 {
		ctx.Printf("Nothing to remove: no %s on %s\n", kind.Label(category), date)
		return nil
	}

	removed := 0
	for removed < c.Count && entry.Count(kind, category) > 0 {
		if entry, err = ctx.Editor().Remove(ctx.Background(), date, kind, category); err != nil {
			return err
		}
		removed++
	}

	left := entry.Count(kind, category)
	if left == 0 {
		ctx.Printf("✓ Removed %s %s from %s\n", kind.Emoji(category), kind.Label(category), date)
	} else {
		ctx.Printf("✓ Removed %d %s %s from %s (now %d)\n", removed, kind.Emoji(category), kind.Label(category), date, left)
	}
	return nil
}

type DeleteCmd struct {
	Date string `arg:"" help:"Date whose entry should be deleted (YYYY-MM-DD)."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	entry, found, err := ctx.Store.GetEntryByDate(ctx.Background(), date)
	if err != nil {
		return err
	}
	if !found {
		ctx.Printf("No entry for %s\n", date)
		return nil
	}

	if !c.Yes {
		ok, err := cli.Confirm(
			fmt.Sprintf("Delete the entry for %s?", date),
			fmt.Sprintf("%d items will be removed. This cannot be undone.", entry.Total()),
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := calendar.Delete(ctx.Background(), ctx.Editor(), date); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted entry for %s\n", date)
	return nil
}
