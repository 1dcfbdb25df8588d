package entries

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/models"
)

var (
	titleColor = color.New(color.Bold, color.Underline)
	faint      = color.New(color.Faint, color.Italic)
)

type ShowCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, today, yesterday). Defaults to today."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	entry, found, err := ctx.Store.GetEntryByDate(ctx.Background(), date)
	if err != nil {
		return err
	}

	heading := date
	if date == ctx.Today() {
		heading += " (today)"
	}
	titleColor.Fprintln(ctx.Writer(), heading)
	if !found {
		faint.Fprintln(ctx.Writer(), "  nothing logged")
		return nil
	}

	for _, kind := range models.Kinds() {
		ctx.Println()
		color.New(color.Bold).Fprintln(ctx.Writer(), kind.Title())
		items := entry.Items(kind)
		if len(items) == 0 {
			faint.Fprintln(ctx.Writer(), "  none")
			continue
		}
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, it := range items {
			tbl.AddRow(" ", kind.Emoji(it.Category), kind.Label(it.Category), fmt.Sprintf("×%d", it.Count))
		}
		ctx.Println(tbl)
	}
	return nil
}

type ListCmd struct {
	From string `help:"First date to include (YYYY-MM-DD)."`
	To   string `help:"Last date to include (YYYY-MM-DD). Defaults to today when --from is set."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	var (
		entries []models.DailyEntry
		err     error
	)
	if c.From == "" && c.To == "" {
		entries, err = ctx.Store.GetAllEntries(ctx.Background())
	} else {
		from, to := c.From, c.To
		if from == "" {
			from = "0001-01-01"
		} else if err := models.ValidateDate(from); err != nil {
			return err
		}
		if to == "" {
			to = ctx.Today()
		} else if err := models.ValidateDate(to); err != nil {
			return err
		}
		if from > to {
			return fmt.Errorf("--from %s is after --to %s", from, to)
		}
		entries, err = ctx.Store.GetEntriesInRange(ctx.Background(), from, to)
		// Range queries come back ascending; list newest first
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		ctx.Println("No entries found.")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.Wrap = true
	bold := color.New(color.Bold).SprintFunc()
	tbl.AddRow(bold("Date"), bold("Foods"), bold("Activities"), bold("Moods"))
	for i := range entries {
		e := &entries[i]
		tbl.AddRow(e.Date,
			cli.FormatItems(e, models.KindFood),
			cli.FormatItems(e, models.KindActivity),
			cli.FormatItems(e, models.KindMood),
		)
	}
	ctx.Println(tbl)
	faint.Fprintf(ctx.Writer(), "\n%d entries\n", len(entries))
	return nil
}

type CategoriesCmd struct {
	Kind string `arg:"" optional:"" help:"Only list one collection (foods, activities, moods)."`
}

func (c *CategoriesCmd) Run(ctx *cli.Context) error {
	kinds := models.Kinds()
	if c.Kind != "" {
		k, ok := models.ParseKind(c.Kind)
		if !ok {
			return fmt.Errorf("unknown kind %q (want foods, activities or moods)", c.Kind)
		}
		kinds = []models.Kind{k}
	}

	for i, kind := range kinds {
		if i > 0 {
			ctx.Println()
		}
		titleColor.Fprintf(ctx.Writer(), "%s (%s)\n", kind.Title(), kind)
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, cat := range kind.Categories() {
			tbl.AddRow(" ", kind.Emoji(cat), cat, kind.Label(cat))
		}
		ctx.Println(tbl)
	}
	return nil
}
