package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/foodmood/internal/config"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/storage/diskv"
	"github.com/julianstephens/foodmood/internal/storage/sqlite"
	"github.com/julianstephens/foodmood/internal/testutil"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Timezone = "UTC"
	return cfg
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		category string
		wantKind models.Kind
		wantCat  string
		wantErr  bool
	}{
		{name: "inferred food", category: "fruits", wantKind: models.KindFood, wantCat: "fruits"},
		{name: "inferred mood", category: "Happy", wantKind: models.KindMood, wantCat: "happy"},
		{name: "prefixed", category: "activities:dance", wantKind: models.KindActivity, wantCat: "dance"},
		{name: "slash prefix singular", category: "mood/calm", wantKind: models.KindMood, wantCat: "calm"},
		{name: "explicit kind", kind: "food", category: "sweet", wantKind: models.KindFood, wantCat: "sweet"},
		{name: "kind mismatch", kind: "moods", category: "fruits", wantErr: true},
		{name: "unknown kind", kind: "drinks", category: "fruits", wantErr: true},
		{name: "unknown category", category: "pizza", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, c, err := ResolveCategory(tt.kind, tt.category)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if k != tt.wantKind || c != tt.wantCat {
				t.Errorf("got %s/%s, want %s/%s", k, c, tt.wantKind, tt.wantCat)
			}
		})
	}
}

func TestResolveDate(t *testing.T) {
	ctx := &Context{Config: testConfig(), Clock: testutil.FixedClock()}
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "2024-01-15"},
		{in: "today", want: "2024-01-15"},
		{in: "Yesterday", want: "2024-01-14"},
		{in: "2023-12-31", want: "2023-12-31"},
		{in: "12/31/2023", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ctx.ResolveDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveDate(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTodayUsesConfiguredZone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Pacific/Kiritimati" // UTC+14
	ctx := &Context{Config: cfg, Clock: testutil.NewStubClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))}
	if got := ctx.Today(); got != "2024-01-16" {
		t.Errorf("Today = %s", got)
	}
}

func TestFormatItems(t *testing.T) {
	e := models.NewEntry("2024-01-01")
	if got := FormatItems(&e, models.KindFood); got != "-" {
		t.Errorf("empty = %q", got)
	}
	e.Add(models.KindFood, "fruits")
	e.Add(models.KindFood, "fruits")
	e.Add(models.KindFood, "carbs")
	if got := FormatItems(&e, models.KindFood); got != "🍎×2 🍞" {
		t.Errorf("FormatItems = %q", got)
	}
}

func TestBar(t *testing.T) {
	if got := Bar(0, 10, 20); got != "" {
		t.Errorf("zero count = %q", got)
	}
	if got := Bar(10, 10, 20); len([]rune(got)) != 20 {
		t.Errorf("full bar = %d cells", len([]rune(got)))
	}
	if got := Bar(1, 100, 20); len([]rune(got)) != 1 {
		t.Errorf("tiny count should still draw one cell, got %q", got)
	}
}

func TestBackupManagerRequiresSQLite(t *testing.T) {
	ctx := &Context{Config: testConfig(), Store: diskv.New(t.TempDir() + "/")}
	if _, err := ctx.BackupManager(); err == nil {
		t.Error("expected error for non-SQLite store")
	}
	// Must not panic or fail loudly
	ctx.PerformAutomaticBackup()

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "foodmood.db"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx = &Context{Config: testConfig(), Store: store, Clock: testutil.FixedClock()}
	mgr, err := ctx.BackupManager()
	if err != nil {
		t.Fatalf("BackupManager: %v", err)
	}
	ctx.PerformAutomaticBackup()
	backups, err := mgr.ListBackups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("backups = %v, %v", backups, err)
	}
}

func TestEditorAndNotify(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "foodmood.db"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var sent []notice.Notice
	var out bytes.Buffer
	ctx := &Context{
		Config: testConfig(),
		Store:  store,
		Clock:  testutil.FixedClock(),
		Out:    &out,
		Sink: notice.SinkFunc(func(_ context.Context, n notice.Notice) error {
			sent = append(sent, n)
			return nil
		}),
	}

	if ctx.Editor() != ctx.Editor() {
		t.Error("Editor should be built once")
	}
	if _, err := ctx.Editor().Add(ctx.Background(), ctx.Today(), models.KindMood, "happy"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ctx.Notify(notice.Success("Saved"))
	if len(sent) != 1 || sent[0].Text != "Saved" {
		t.Errorf("sent = %+v", sent)
	}

	ctx.Printf("%d entries\n", 1)
	if !strings.Contains(out.String(), "1 entries") {
		t.Errorf("out = %q", out.String())
	}
}
