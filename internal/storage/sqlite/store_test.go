package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
	"github.com/julianstephens/foodmood/internal/testutil"
)

func setupTestStore(t *testing.T) (*Store, *testutil.StubClock, func()) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	clk := testutil.FixedClock()
	store := NewStore(dbPath, storage.WithClock(clk))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cleanup := func() {
		store.Close()
	}
	return store, clk, cleanup
}

func entryWith(date string, kind models.Kind, category string, count int) models.DailyEntry {
	e := models.NewEntry(date)
	for i := 0; i < count; i++ {
		e.Add(kind, category)
	}
	return e
}

func TestSaveEntryInsertThenUpdate(t *testing.T) {
	store, clk, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	entry := entryWith("2024-01-01", models.KindFood, "fruits", 1)
	id, err := store.SaveEntry(ctx, &entry)
	if err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	if id == 0 || entry.ID != id {
		t.Fatalf("expected assigned id, got %d (entry.ID=%d)", id, entry.ID)
	}
	if entry.Timestamp != clk.Now().UnixMilli() {
		t.Errorf("timestamp = %d, want %d", entry.Timestamp, clk.Now().UnixMilli())
	}

	clk.Advance(time.Minute)
	entry.Add(models.KindFood, "fruits")
	entry.Add(models.KindMood, "happy")
	id2, err := store.SaveEntry(ctx, &entry)
	if err != nil {
		t.Fatalf("SaveEntry (update) failed: %v", err)
	}
	if id2 != id {
		t.Errorf("update changed id from %d to %d", id, id2)
	}

	got, ok, err := store.GetEntryByDate(ctx, "2024-01-01")
	if err != nil || !ok {
		t.Fatalf("GetEntryByDate: ok=%v err=%v", ok, err)
	}
	if got.Count(models.KindFood, "fruits") != 2 || got.Count(models.KindMood, "happy") != 1 {
		t.Errorf("unexpected entry after update: %+v", got)
	}
	if got.Timestamp != clk.Now().UnixMilli() {
		t.Errorf("timestamp not refreshed on update")
	}
	if got.Foods[0].Emoji != "🍎" {
		t.Errorf("emoji not persisted: %+v", got.Foods[0])
	}
}

func TestGetOrCreateEntryDoesNotWrite(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	entry, err := store.GetOrCreateEntry(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("GetOrCreateEntry failed: %v", err)
	}
	if entry.Persisted() || !entry.IsEmpty() || entry.Date != "2024-01-01" {
		t.Errorf("expected fresh unpersisted entry, got %+v", entry)
	}

	all, err := store.GetAllEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("GetOrCreateEntry wrote %d rows", len(all))
	}
}

func TestDateUniqueness(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	first := entryWith("2024-01-01", models.KindFood, "fruits", 1)
	if _, err := store.SaveEntry(ctx, &first); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	second := entryWith("2024-01-01", models.KindFood, "salty", 1)
	_, err := store.SaveEntry(ctx, &second)
	if err == nil {
		t.Fatal("expected a second row for the same date to fail")
	}
	if !errors.Is(err, errors.ErrStorage) {
		t.Errorf("expected storage failure, got %v", err)
	}
}

func TestSaveKeepsDate(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	entry := entryWith("2024-01-01", models.KindFood, "fruits", 1)
	id, err := store.SaveEntry(ctx, &entry)
	if err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	moved := entry.Clone()
	moved.Date = "2024-01-02"
	if _, err := store.SaveEntry(ctx, &moved); !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("expected validation failure for a changed date, got %v", err)
	}

	if _, ok, _ := store.GetEntryByDate(ctx, "2024-01-02"); ok {
		t.Error("entry moved to the new date")
	}
	got, ok, err := store.GetEntryByDate(ctx, "2024-01-01")
	if err != nil || !ok {
		t.Fatalf("GetEntryByDate: ok=%v err=%v", ok, err)
	}
	if got.ID != id || got.Count(models.KindFood, "fruits") != 1 {
		t.Errorf("original entry changed: %+v", got)
	}

	missing := entryWith("2024-01-03", models.KindFood, "fruits", 1)
	missing.ID = 99
	if _, err := store.SaveEntry(ctx, &missing); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found for an unknown id, got %v", err)
	}
}

func TestOrdering(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, date := range []string{"2024-01-03", "2024-01-01", "2024-01-05", "2024-01-02"} {
		e := entryWith(date, models.KindActivity, "dance", 1)
		if _, err := store.SaveEntry(ctx, &e); err != nil {
			t.Fatalf("SaveEntry(%s) failed: %v", date, err)
		}
	}

	all, err := store.GetAllEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	wantAll := []string{"2024-01-05", "2024-01-03", "2024-01-02", "2024-01-01"}
	for i, e := range all {
		if e.Date != wantAll[i] {
			t.Errorf("GetAllEntries[%d] = %s, want %s", i, e.Date, wantAll[i])
		}
	}

	ranged, err := store.GetEntriesInRange(ctx, "2024-01-02", "2024-01-05")
	if err != nil {
		t.Fatalf("GetEntriesInRange failed: %v", err)
	}
	wantRange := []string{"2024-01-02", "2024-01-03", "2024-01-05"}
	if len(ranged) != len(wantRange) {
		t.Fatalf("range returned %d entries, want %d", len(ranged), len(wantRange))
	}
	for i, e := range ranged {
		if e.Date != wantRange[i] {
			t.Errorf("range[%d] = %s, want %s", i, e.Date, wantRange[i])
		}
		if e.Count(models.KindActivity, "dance") != 1 {
			t.Errorf("range[%d] lost its items", i)
		}
	}

	empty, err := store.GetEntriesInRange(ctx, "2025-01-01", "2025-01-31")
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty range, got %d entries err=%v", len(empty), err)
	}
}

func TestDeleteEntry(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	e := entryWith("2024-01-01", models.KindMood, "sad", 2)
	id, err := store.SaveEntry(ctx, &e)
	if err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	if err := store.DeleteEntry(ctx, id); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if _, ok, _ := store.GetEntryByDate(ctx, "2024-01-01"); ok {
		t.Error("entry still present after delete")
	}

	var items int
	if err := store.GetDB().QueryRow("SELECT COUNT(*) FROM entry_items").Scan(&items); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if items != 0 {
		t.Errorf("%d orphaned items after delete", items)
	}

	if err := store.DeleteEntry(ctx, 9999); err != nil {
		t.Errorf("deleting a missing id should not fail: %v", err)
	}
}

func TestSaveRejectsBadCounts(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	e := models.NewEntry("2024-01-01")
	e.Foods = append(e.Foods, models.FoodItem{Category: models.FoodFruits, Count: 0, Emoji: "🍎"})
	_, err := store.SaveEntry(context.Background(), &e)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestImportEntriesReplacesData(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	old := entryWith("2023-06-01", models.KindFood, "meat", 1)
	if _, err := store.SaveEntry(ctx, &old); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	incoming := []models.DailyEntry{
		entryWith("2024-01-01", models.KindFood, "fruits", 3),
		entryWith("2024-01-02", models.KindMood, "calm", 1),
	}
	incoming[0].ID = 42
	incoming[0].Timestamp = 1704067200000
	incoming[1].Timestamp = 1704153600000

	if err := store.ImportEntries(ctx, incoming); err != nil {
		t.Fatalf("ImportEntries failed: %v", err)
	}

	all, err := store.GetAllEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries after import, got %d", len(all))
	}
	byDate := map[string]models.DailyEntry{}
	for _, e := range all {
		byDate[e.Date] = e
	}
	if _, ok := byDate["2023-06-01"]; ok {
		t.Error("import did not clear existing entries")
	}
	if got := byDate["2024-01-01"]; got.Timestamp != 1704067200000 || got.Count(models.KindFood, "fruits") != 3 {
		t.Errorf("imported entry not preserved: %+v", got)
	}
}

func TestImportEntriesIsAtomic(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	existing := entryWith("2023-06-01", models.KindFood, "meat", 2)
	if _, err := store.SaveEntry(ctx, &existing); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	// Two records for the same date violate the unique index mid-import
	incoming := []models.DailyEntry{
		entryWith("2024-01-01", models.KindFood, "fruits", 1),
		entryWith("2024-01-01", models.KindFood, "carbs", 1),
	}
	err := store.ImportEntries(ctx, incoming)
	if err == nil {
		t.Fatal("expected import with duplicate dates to fail")
	}
	if !errors.Is(err, errors.ErrStorage) {
		t.Errorf("expected storage failure, got %v", err)
	}

	all, err := store.GetAllEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	if len(all) != 1 || all[0].Date != "2023-06-01" || all[0].Count(models.KindFood, "meat") != 2 {
		t.Errorf("store changed after failed import: %+v", all)
	}
}

func TestClearAllEntries(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	e := entryWith("2024-01-01", models.KindFood, "sweet", 1)
	if _, err := store.SaveEntry(ctx, &e); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	if err := store.ClearAllEntries(ctx); err != nil {
		t.Fatalf("ClearAllEntries failed: %v", err)
	}
	all, _ := store.GetAllEntries(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty store, got %d entries", len(all))
	}
}

func TestChangeNotifications(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	var changes []storage.Change
	unsubscribe := store.Subscribe(func(c storage.Change) { changes = append(changes, c) })
	defer unsubscribe()

	e := entryWith("2024-01-01", models.KindFood, "fruits", 1)
	id, _ := store.SaveEntry(ctx, &e)
	_ = store.DeleteEntry(ctx, id)
	_ = store.DeleteEntry(ctx, id)

	want := []storage.ChangeOp{storage.ChangeSave, storage.ChangeDelete}
	if len(changes) != len(want) {
		t.Fatalf("got %d changes, want %d: %+v", len(changes), len(want), changes)
	}
	for i, op := range want {
		if changes[i].Op != op || changes[i].Date != "2024-01-01" {
			t.Errorf("change %d = %+v, want op %s", i, changes[i], op)
		}
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load should fail before Init")
	}
}

func TestLoadAfterInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "foodmood.db")
	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	reopened := NewStore(dbPath)
	defer reopened.Close()
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	current, latest, err := reopened.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("schema version %d/%d", current, latest)
	}
	if res, err := reopened.IntegrityCheck(); err != nil || res != "ok" {
		t.Errorf("IntegrityCheck = %q, %v", res, err)
	}
}
