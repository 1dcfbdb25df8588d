package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/storage"
)

type versioned interface {
	SchemaVersion() (current, latest int, err error)
}

type integrityChecker interface {
	IntegrityCheck() (string, error)
}

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly checks never fail the run
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var doctorChecks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Database integrity", needsDB: true, run: checkIntegrity},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Future entries", needsDB: true, warnOnly: true, run: checkFutureEntries},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range doctorChecks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Some checks failed. Please review the errors above.")
		return fmt.Errorf("diagnostics failed")
	}
	ctx.Println("All checks passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.SQLite(); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	v, ok := ctx.Store.(versioned)
	if !ok {
		// Directory store has no schema
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	v, ok := ctx.Store.(versioned)
	if !ok {
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'foodmood migrate')", current, latest)
	}
	return nil
}

func checkIntegrity(ctx *cli.Context) error {
	ic, ok := ctx.Store.(integrityChecker)
	if !ok {
		return nil
	}
	result, err := ic.IntegrityCheck()
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'foodmood backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	entries, err := ctx.Store.GetAllEntries(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}
	dates := make(map[string]bool, len(entries))
	for i := range entries {
		e := &entries[i]
		if dates[e.Date] {
			return fmt.Errorf("duplicate entry for date %s", e.Date)
		}
		dates[e.Date] = true
		if err := storage.ValidateEntry(e); err != nil {
			return fmt.Errorf("entry %s: %w", e.Date, err)
		}
		if e.IsEmpty() {
			return fmt.Errorf("entry %s is stored with no items", e.Date)
		}
	}
	return nil
}

func checkFutureEntries(ctx *cli.Context) error {
	today := ctx.Today()
	entries, err := ctx.Store.GetEntriesInRange(ctx.Background(), today, "9999-12-31")
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}
	future := 0
	for _, e := range entries {
		if e.Date > today {
			future++
		}
	}
	if future > 0 {
		return fmt.Errorf("%d entries are dated after %s and cannot be edited until then", future, today)
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
