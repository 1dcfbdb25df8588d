package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
	"github.com/julianstephens/foodmood/internal/storage/sqlite"
	"github.com/julianstephens/foodmood/internal/testutil"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"), storage.WithClock(testutil.FixedClock()))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store storage.Provider, dates ...string) {
	t.Helper()
	for _, d := range dates {
		e := models.NewEntry(d)
		e.Add(models.KindFood, "fruits")
		e.Add(models.KindMood, "happy")
		if _, err := store.SaveEntry(context.Background(), &e); err != nil {
			t.Fatalf("SaveEntry %s: %v", d, err)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2024-01-15"); got != "foodmood-export-2024-01-15.json" {
		t.Errorf("FileName = %q", got)
	}
}

func TestExportEnvelope(t *testing.T) {
	store := setupTestStore(t)
	seed(t, store, "2024-01-01", "2024-01-02")

	var buf bytes.Buffer
	n, err := Export(context.Background(), store, &buf, ExportOptions{Clock: testutil.FixedClock()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d, want 2", n)
	}
	if !strings.Contains(buf.String(), "\n  \"version\": \"1.0\"") {
		t.Errorf("output not indented with two spaces:\n%s", buf.String())
	}

	var data models.ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if data.ExportDate != "2024-01-15T10:30:00.000Z" {
		t.Errorf("exportDate = %q", data.ExportDate)
	}
	if _, err := ExportTime(data.ExportDate); err != nil {
		t.Errorf("ExportTime: %v", err)
	}
	if len(data.Entries) != 2 || data.Entries[0].Date != "2024-01-02" {
		t.Errorf("entries = %+v", data.Entries)
	}
}

func TestExportEmptyStore(t *testing.T) {
	store := setupTestStore(t)
	var buf bytes.Buffer
	if _, err := Export(context.Background(), store, &buf, ExportOptions{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Errorf("empty export should carry an empty array:\n%s", buf.String())
	}
}

func TestRoundTripReplacesStore(t *testing.T) {
	src := setupTestStore(t)
	seed(t, src, "2024-01-01", "2024-01-02", "2024-01-03")
	var buf bytes.Buffer
	if _, err := Export(context.Background(), src, &buf, ExportOptions{}); err != nil {
		t.Fatal(err)
	}

	dst := setupTestStore(t)
	seed(t, dst, "2023-06-01")
	res, err := Import(context.Background(), dst, &buf, ImportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 3 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}
	all, _ := dst.GetAllEntries(context.Background())
	if len(all) != 3 {
		t.Fatalf("store has %d entries, want 3", len(all))
	}
	if _, ok, _ := dst.GetEntryByDate(context.Background(), "2023-06-01"); ok {
		t.Error("import did not replace existing entries")
	}
}

func TestImportSkipsInvalidRecords(t *testing.T) {
	store := setupTestStore(t)
	input := `{
  "version": "1.0",
  "exportDate": "2024-01-15T10:30:00.000Z",
  "entries": [
    {"id": 7, "date": "2024-01-01", "timestamp": 1704100000000, "foods": [{"category": "fruits", "count": 2}], "activities": [], "moods": []},
    {"date": "", "timestamp": 1, "foods": [], "activities": [], "moods": []},
    {"date": "2024-01-02", "timestamp": "yesterday", "foods": [], "activities": [], "moods": []},
    {"date": "2024-01-03", "timestamp": 1, "foods": [], "moods": []},
    {"date": "2024-01-04", "timestamp": 1, "foods": [{"category": "pizza", "count": 1, "emoji": "🍕"}], "activities": [], "moods": []},
    {"date": "2024-01-05", "timestamp": 1, "foods": [], "activities": [], "moods": []},
    "not an object"
  ]
}`
	res, err := Import(context.Background(), store, strings.NewReader(input), ImportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 6 {
		t.Errorf("result = %+v, want 1 imported, 6 skipped", res)
	}

	e, ok, err := store.GetEntryByDate(context.Background(), "2024-01-01")
	if err != nil || !ok {
		t.Fatalf("imported entry missing: %v", err)
	}
	if e.Timestamp != 1704100000000 {
		t.Errorf("timestamp = %d, want preserved", e.Timestamp)
	}
	if e.Foods[0].Emoji != "🍎" {
		t.Errorf("missing emoji not filled: %q", e.Foods[0].Emoji)
	}
}

func TestImportDuplicateDateLastWins(t *testing.T) {
	entries, skipped, err := Parse([]byte(`{"version":"1.0","entries":[
		{"date":"2024-01-01","timestamp":1,"foods":[{"category":"carbs","count":1}],"activities":[],"moods":[]},
		{"date":"2024-01-01","timestamp":2,"foods":[{"category":"meat","count":3}],"activities":[],"moods":[]}
	]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 || skipped != 1 {
		t.Fatalf("entries=%d skipped=%d", len(entries), skipped)
	}
	if entries[0].Count(models.KindFood, "meat") != 3 {
		t.Errorf("later record did not win: %+v", entries[0])
	}
}

func TestImportRejectsWholeFile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `nope`, ErrInvalidFormat},
		{"missing version", `{"entries": []}`, ErrInvalidFormat},
		{"empty version", `{"version": "", "entries": []}`, ErrInvalidFormat},
		{"entries not array", `{"version": "1.0", "entries": {}}`, ErrInvalidFormat},
		{"entries missing", `{"version": "1.0"}`, ErrInvalidFormat},
		{"no valid entries", `{"version": "1.0", "entries": [{"date": "2024-01-01"}]}`, ErrNoValidEntries},
		{"empty entries", `{"version": "1.0", "entries": []}`, ErrNoValidEntries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			seed(t, store, "2024-01-10")

			_, err := Import(context.Background(), store, strings.NewReader(tt.input), ImportOptions{})
			if !stderrors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !stderrors.Is(err, errors.ErrValidation) {
				t.Errorf("err should be a validation failure")
			}

			all, _ := store.GetAllEntries(context.Background())
			if len(all) != 1 {
				t.Errorf("store was modified: %d entries", len(all))
			}
		})
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	src := setupTestStore(t)
	seed(t, src, "2024-01-01")

	var buf bytes.Buffer
	if _, err := Export(context.Background(), src, &buf, ExportOptions{Passphrase: "correct horse"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !IsEncrypted(buf.Bytes()) {
		t.Fatal("export is not age encrypted")
	}
	cipher := buf.Bytes()

	t.Run("no passphrase", func(t *testing.T) {
		_, err := Import(context.Background(), setupTestStore(t), bytes.NewReader(cipher), ImportOptions{})
		if !stderrors.Is(err, ErrPassphraseRequired) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := Import(context.Background(), setupTestStore(t), bytes.NewReader(cipher), ImportOptions{Passphrase: "wrong"})
		if !stderrors.Is(err, errors.ErrValidation) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("passphrase func", func(t *testing.T) {
		dst := setupTestStore(t)
		asked := false
		res, err := Import(context.Background(), dst, bytes.NewReader(cipher), ImportOptions{
			PassphraseFunc: func() (string, error) { asked = true; return "correct horse", nil },
		})
		if err != nil {
			t.Fatalf("Import: %v", err)
		}
		if !asked || res.Imported != 1 {
			t.Errorf("asked=%v result=%+v", asked, res)
		}
	})
}
