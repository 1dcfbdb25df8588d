package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/storage/backend"
)

type DebugCmd struct {
	DBPath *DebugDBPathCmd `cmd:"" help:"Show database path and backend."`
	Dump   *DebugDumpCmd   `cmd:"" help:"Dump the stored entry for a date as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path":    ctx.Store.GetConfigPath(),
		"backend": string(backend.Detect(ctx.Config.Database)),
	}
	return printJSON(ctx, output)
}

type DebugDumpCmd struct {
	Date string `arg:"" help:"Date of the entry to dump (YYYY-MM-DD, today, yesterday)."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(cmd.Date)
	if err != nil {
		return err
	}

	entry, found, err := ctx.Store.GetEntryByDate(ctx.Background(), date)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no entry found for date: %s", date)
	}
	return printJSON(ctx, entry)
}

func printJSON(ctx *cli.Context, v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
