package entries

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/foodmood/internal/aggregate"
	"github.com/julianstephens/foodmood/internal/calendar"
	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/models"
)

const barWidth = 30

type CalendarCmd struct {
	Month string `help:"Month to show (YYYY-MM). Defaults to the current month." short:"m"`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	today := ctx.Today()
	month, err := calendar.StartOfMonth(today)
	if err != nil {
		return err
	}
	if c.Month != "" {
		if month, err = calendar.ParseMonth(c.Month); err != nil {
			return err
		}
	}

	view, err := calendar.Month(ctx.Background(), ctx.Store, month, today)
	if err != nil {
		return err
	}

	w := ctx.Writer()
	titleColor.Fprintln(w, view.Title())
	ctx.Println("Su  Mo  Tu  We  Th  Fr  Sa")

	logged := color.New(color.FgGreen, color.Bold)
	now := color.New(color.Underline, color.Bold)
	for _, week := range view.Weeks {
		for i, d := range week {
			if i > 0 {
				fmt.Fprint(w, "  ")
			}
			cell := fmt.Sprintf("%2d", d.Day)
			switch {
			case !d.InMonth:
				fmt.Fprint(w, "  ")
			case d.IsToday:
				now.Fprint(w, cell)
			case d.HasEntry():
				logged.Fprint(w, cell)
			case d.IsFuture:
				faint.Fprint(w, cell)
			default:
				fmt.Fprint(w, cell)
			}
		}
		fmt.Fprintln(w)
	}

	ctx.Println()
	if view.Entries == 0 {
		faint.Fprintln(w, "No entries this month.")
	} else {
		fmt.Fprintf(w, "%s days logged\n", logged.Sprint(view.Entries))
	}
	return nil
}

type StatsCmd struct {
	Window string `help:"Time window (week, month, all)." enum:"week,month,all" default:"all" short:"w"`
	Kind   string `help:"Only show one collection (foods, activities, moods)." short:"k"`
	Series bool   `help:"Also print the per-day mood series."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	win, err := aggregate.ParseWindow(c.Window)
	if err != nil {
		return err
	}
	kinds := models.Kinds()
	if c.Kind != "" {
		k, ok := models.ParseKind(c.Kind)
		if !ok {
			return fmt.Errorf("unknown kind %q (want foods, activities or moods)", c.Kind)
		}
		kinds = []models.Kind{k}
	}

	summary, err := aggregate.LoadSummary(ctx.Background(), ctx.Store, win, ctx.Today())
	if err != nil {
		return err
	}

	w := ctx.Writer()
	titleColor.Fprintf(w, "%s (%d entries)\n", win.Label(), summary.Entries)
	for _, kind := range kinds {
		ctx.Println()
		color.New(color.Bold).Fprintln(w, kind.Title())
		totals := aggregate.NonZero(summary.Totals(kind))
		if len(totals) == 0 {
			faint.Fprintln(w, "  No data for this period")
			continue
		}
		max := 0
		for _, t := range totals {
			if t.Count > max {
				max = t.Count
			}
		}
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, t := range totals {
			tbl.AddRow(" ", t.Emoji, t.Label, cli.Bar(t.Count, max, barWidth), t.Count)
		}
		ctx.Println(tbl)
	}

	if c.Series {
		ctx.Println()
		printMoodSeries(ctx, summary.MoodSeries)
	}
	return nil
}

func printMoodSeries(ctx *cli.Context, series []aggregate.Point) {
	w := ctx.Writer()
	color.New(color.Bold).Fprintln(w, "Moods Over Time")
	if len(series) == 0 {
		faint.Fprintln(w, "  No data for this period")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, p := range series {
		var parts []string
		for _, cat := range models.KindMood.Categories() {
			if n := p.Counts[cat]; n > 0 {
				parts = append(parts, strings.Repeat(models.KindMood.Emoji(cat), n))
			}
		}
		label := p.Date
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			label = t.Format("Jan 2")
		}
		tbl.AddRow(" ", label, strings.Join(parts, " "))
	}
	ctx.Println(tbl)
}
