package system

import (
	"encoding/json"
	"testing"

	"github.com/julianstephens/foodmood/internal/models"
)

func TestDebugDBPathCmd(t *testing.T) {
	ctx, dbPath, out := setupTestContext(t)
	ctx.Config.Database = dbPath

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Fatalf("db-path failed: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got["path"] != dbPath {
		t.Errorf("path = %q, want %q", got["path"], dbPath)
	}
	if got["backend"] != "sqlite" {
		t.Errorf("backend = %q, want sqlite", got["backend"])
	}
}

func TestDebugDumpCmd(t *testing.T) {
	ctx, _, out := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if _, err := ctx.Editor().Add(ctx.Background(), "2024-01-15", models.KindFood, "meat"); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	t.Run("existing entry", func(t *testing.T) {
		out.Reset()
		if err := (&DebugDumpCmd{Date: "today"}).Run(ctx); err != nil {
			t.Fatalf("dump failed: %v", err)
		}
		var entry models.DailyEntry
		if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
			t.Fatalf("output is not an entry: %v\n%s", err, out.String())
		}
		if entry.Date != "2024-01-15" || entry.Count(models.KindFood, "meat") != 1 {
			t.Errorf("dumped %+v", entry)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		if err := (&DebugDumpCmd{Date: "2024-01-01"}).Run(ctx); err == nil {
			t.Error("expected an error for a date with no entry")
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		if err := (&DebugDumpCmd{Date: "01/15/2024"}).Run(ctx); err == nil {
			t.Error("expected an error for a malformed date")
		}
	})
}
