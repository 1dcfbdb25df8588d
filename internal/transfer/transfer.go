// Package transfer reads and writes the JSON export envelope. Exports can
// optionally be wrapped in an age passphrase envelope.
package transfer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"filippo.io/age"

	"github.com/julianstephens/foodmood/internal/clock"
	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/storage"
)

// exportDateLayout matches JavaScript's Date.toISOString.
const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

// ageHeader is the first line of every age file.
var ageHeader = []byte("age-encryption.org/v1")

var (
	// ErrPassphraseRequired is returned when an encrypted file is imported
	// without a way to obtain the passphrase.
	ErrPassphraseRequired = errors.Invalid("", "export file is encrypted; a passphrase is required")
	ErrInvalidFormat      = errors.Invalid("", "Invalid export file format")
	ErrNoValidEntries     = errors.Invalid("", "No valid entries found in file")
)

// FileName is the suggested export file name for today.
func FileName(today string) string {
	return constants.ExportFilePrefix + today + constants.ExportFileSuffix
}

type ExportOptions struct {
	// Passphrase, when set, wraps the JSON in an age scrypt envelope.
	Passphrase string
	Clock      clock.Clock
}

// Export writes every entry to w and returns how many were written.
func Export(ctx context.Context, store storage.Provider, w io.Writer, opts ExportOptions) (int, error) {
	entries, err := store.GetAllEntries(ctx)
	if err != nil {
		return 0, err
	}
	for i := range entries {
		entries[i].Normalize()
	}
	if entries == nil {
		entries = []models.DailyEntry{}
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	data := models.ExportData{
		Version:    constants.ExportVersion,
		ExportDate: clk.Now().UTC().Format(exportDateLayout),
		Entries:    entries,
	}

	out := w
	var enc io.WriteCloser
	if opts.Passphrase != "" {
		recipient, err := age.NewScryptRecipient(opts.Passphrase)
		if err != nil {
			return 0, fmt.Errorf("creating scrypt recipient: %w", err)
		}
		enc, err = age.Encrypt(w, recipient)
		if err != nil {
			return 0, fmt.Errorf("creating encrypted writer: %w", err)
		}
		out = enc
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return 0, fmt.Errorf("finalizing encryption: %w", err)
		}
	}

	logger.Info("Exported entries", "count", len(entries), "encrypted", enc != nil)
	return len(entries), nil
}

type ImportOptions struct {
	Passphrase string
	// PassphraseFunc is asked for the passphrase when the file is
	// encrypted and Passphrase is empty.
	PassphraseFunc func() (string, error)
}

// Result reports what an import did.
type Result struct {
	Imported int
	Skipped  int
}

// IsEncrypted reports whether data starts with an age header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, ageHeader)
}

// Import replaces the store's contents with the valid records of the file
// read from r. Invalid records are skipped; if none are valid the store is
// left untouched.
func Import(ctx context.Context, store storage.Provider, r io.Reader, opts ImportOptions) (Result, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(ageHeader))

	var src io.Reader = br
	if IsEncrypted(head) {
		pass := opts.Passphrase
		if pass == "" && opts.PassphraseFunc != nil {
			var err error
			if pass, err = opts.PassphraseFunc(); err != nil {
				return Result{}, err
			}
		}
		if pass == "" {
			return Result{}, ErrPassphraseRequired
		}
		identity, err := age.NewScryptIdentity(pass)
		if err != nil {
			return Result{}, fmt.Errorf("creating scrypt identity: %w", err)
		}
		dec, err := age.Decrypt(br, identity)
		if err != nil {
			return Result{}, errors.Invalid("passphrase", "could not decrypt export: %v", err)
		}
		src = dec
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return Result{}, fmt.Errorf("reading import: %w", err)
	}
	entries, skipped, err := Parse(raw)
	if err != nil {
		return Result{Skipped: skipped}, err
	}
	if err := store.ImportEntries(ctx, entries); err != nil {
		return Result{Skipped: skipped}, err
	}

	logger.Info("Imported entries", "count", len(entries), "skipped", skipped)
	return Result{Imported: len(entries), Skipped: skipped}, nil
}

// Parse validates an export envelope and returns its usable entries plus
// the number of records dropped. Incoming ids are discarded. When a date
// appears more than once the last record wins.
func Parse(data []byte) ([]models.DailyEntry, int, error) {
	var envelope struct {
		Version json.RawMessage `json:"version"`
		Entries json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, 0, ErrInvalidFormat
	}
	var version string
	if err := json.Unmarshal(envelope.Version, &version); err != nil || version == "" {
		return nil, 0, ErrInvalidFormat
	}
	var records []json.RawMessage
	if err := json.Unmarshal(envelope.Entries, &records); err != nil || records == nil {
		return nil, 0, ErrInvalidFormat
	}

	var entries []models.DailyEntry
	index := make(map[string]int)
	skipped := 0
	for i, rec := range records {
		entry, err := parseRecord(rec)
		if err != nil {
			logger.Debug("Skipping import record", "index", i, "reason", err)
			skipped++
			continue
		}
		if j, dup := index[entry.Date]; dup {
			entries[j] = entry
			skipped++
			continue
		}
		index[entry.Date] = len(entries)
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, skipped, ErrNoValidEntries
	}
	return entries, skipped, nil
}

func parseRecord(rec json.RawMessage) (models.DailyEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec, &fields); err != nil {
		return models.DailyEntry{}, errors.Invalid("entry", "not an object")
	}

	var date string
	if err := json.Unmarshal(fields["date"], &date); err != nil || date == "" {
		return models.DailyEntry{}, errors.Invalid("date", "missing")
	}
	var ts *float64
	if err := json.Unmarshal(fields["timestamp"], &ts); err != nil || ts == nil {
		return models.DailyEntry{}, errors.Invalid("timestamp", "not a number")
	}
	for _, key := range []string{"foods", "activities", "moods"} {
		var arr []json.RawMessage
		if err := json.Unmarshal(fields[key], &arr); err != nil || arr == nil {
			return models.DailyEntry{}, errors.Invalid(key, "not an array")
		}
	}

	var entry models.DailyEntry
	if err := json.Unmarshal(rec, &entry); err != nil {
		return models.DailyEntry{}, errors.Invalid("entry", "%v", err)
	}
	entry.ID = 0
	entry.Timestamp = int64(*ts)
	entry.Normalize()
	fillEmoji(&entry)

	if entry.IsEmpty() {
		return models.DailyEntry{}, errors.Invalid("entry", "%s has no items", date)
	}
	if err := storage.ValidateEntry(&entry); err != nil {
		return models.DailyEntry{}, err
	}
	return entry, nil
}

func fillEmoji(entry *models.DailyEntry) {
	for _, kind := range models.Kinds() {
		items := entry.Items(kind)
		for i := range items {
			if items[i].Emoji == "" {
				items[i].Emoji = kind.Emoji(items[i].Category)
			}
		}
		entry.SetItems(kind, items)
	}
}

// ExportTime parses an envelope's exportDate.
func ExportTime(s string) (time.Time, error) {
	return time.Parse(exportDateLayout, s)
}
