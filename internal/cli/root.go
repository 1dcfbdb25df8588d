package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/julianstephens/foodmood/internal/backup"
	"github.com/julianstephens/foodmood/internal/clock"
	"github.com/julianstephens/foodmood/internal/config"
	"github.com/julianstephens/foodmood/internal/editor"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/models"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/storage"
	"github.com/julianstephens/foodmood/internal/storage/sqlite"
)

type Context struct {
	Store  storage.Provider
	Config config.Config
	// Clock defaults to the real clock.
	Clock clock.Clock
	// Out defaults to os.Stdout.
	Out io.Writer
	// Sink overrides the notification chain built from Config.
	Sink notice.Sink

	editor *editor.Editor
}

// Background is the context commands run their store calls under.
func (c *Context) Background() context.Context {
	return context.Background()
}

func (c *Context) clock() clock.Clock {
	if c.Clock == nil {
		return clock.RealClock{}
	}
	return c.Clock
}

// Editor returns the shared entry editor, building it on first use.
func (c *Context) Editor() *editor.Editor {
	if c.editor == nil {
		c.editor = editor.New(c.Store,
			editor.WithClock(c.clock()),
			editor.WithLocation(c.Config.Location()),
		)
	}
	return c.editor
}

// Today is the current date in the configured timezone.
func (c *Context) Today() string {
	return clock.Today(c.clock(), c.Config.Location())
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Writer(), args...)
}

// SQLite returns the underlying SQLite store, if that is the backend.
func (c *Context) SQLite() (*sqlite.Store, bool) {
	s, ok := c.Store.(*sqlite.Store)
	return s, ok
}

// BackupManager returns a manager for the SQLite database file. Other
// backends have no file to snapshot.
func (c *Context) BackupManager() (*backup.Manager, error) {
	s, ok := c.SQLite()
	if !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite databases")
	}
	max := c.Config.Backup.Max
	if max < 1 {
		max = config.Default().Backup.Max
	}
	return backup.NewManager(s.GetConfigPath(),
		backup.WithMaxBackups(max),
		backup.WithClock(c.clock()),
	), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Skipping automatic backup", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) sink() notice.Sink {
	if c.Sink != nil {
		return c.Sink
	}
	return notice.NewSink(c.Config.Notifications.Tray, c.Config.Notifications.Desktop)
}

// Notify hands n to the configured notification chain. Failures are
// logged only.
func (c *Context) Notify(n notice.Notice) {
	notice.Deliver(c.Background(), c.sink(), n)
}

// ResolveCategory accepts "fruits", "food:fruits" or "foods/fruits" and
// infers the kind when only the category is given.
func ResolveCategory(kind, category string) (models.Kind, string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if i := strings.IndexAny(category, ":/"); i > 0 && kind == "" {
		kind, category = category[:i], category[i+1:]
	}

	if kind != "" {
		k, ok := models.ParseKind(strings.ToLower(kind))
		if !ok {
			return "", "", fmt.Errorf("unknown kind %q (want foods, activities or moods)", kind)
		}
		if !k.Valid(category) {
			return "", "", fmt.Errorf("%q is not one of the %s: %s", category, k, strings.Join(k.Categories(), ", "))
		}
		return k, category, nil
	}

	k, ok := models.KindOf(category)
	if !ok {
		return "", "", fmt.Errorf("unknown category %q", category)
	}
	return k, category, nil
}

// ResolveDate defaults an empty date to today and accepts "today" and
// "yesterday".
func (c *Context) ResolveDate(date string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(date)) {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		now := c.clock().Now().In(c.Config.Location())
		return now.AddDate(0, 0, -1).Format("2006-01-02"), nil
	}
	if err := models.ValidateDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// ReadPassword prompts on stderr and reads a line without echo.
var ReadPassword = func(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(b), nil
}
