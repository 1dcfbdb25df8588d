package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/storage/backend"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing data before initialization."`
	Source string `help:"Source database path or connection string to copy entries from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized foodmood storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Force {
		if _, ok := ctx.SQLite(); !ok {
			// Server and directory backends are cleared in place
			if err := ctx.Store.ClearAllEntries(ctx.Background()); err != nil {
				return fmt.Errorf("failed to clear existing entries: %w", err)
			}
		}
	}

	if c.Source != "" {
		ctx.Printf("Copying entries from: %s\n", c.Source)
		n, err := c.copyEntries(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("Copied %d entries.\n", n)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	s, ok := ctx.SQLite()
	if !ok {
		return nil
	}
	dbPath := s.GetConfigPath()
	if c.Source != "" {
		// Normalize paths to absolute for accurate comparison
		if abs, err := filepath.Abs(dbPath); err == nil {
			dbPath = abs
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		for _, suffix := range []string{"-wal", "-shm"} {
			_ = os.Remove(dbPath + suffix)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyEntries(ctx *cli.Context) (int, error) {
	source, err := backend.Open(c.Source)
	if err != nil {
		return 0, err
	}
	if err := source.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	entries, err := source.GetAllEntries(ctx.Background())
	if err != nil {
		return 0, fmt.Errorf("failed to read entries from source: %w", err)
	}
	if err := ctx.Store.ImportEntries(ctx.Background(), entries); err != nil {
		return 0, fmt.Errorf("failed to write entries: %w", err)
	}
	return len(entries), nil
}
