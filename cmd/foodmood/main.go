package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/cli/backups"
	"github.com/julianstephens/foodmood/internal/cli/data"
	"github.com/julianstephens/foodmood/internal/cli/entries"
	"github.com/julianstephens/foodmood/internal/cli/system"
	"github.com/julianstephens/foodmood/internal/config"
	"github.com/julianstephens/foodmood/internal/constants"
	"github.com/julianstephens/foodmood/internal/errors"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/storage/backend"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"~/.config/foodmood/config.yaml"`
	Database string `help:"SQLite file, diskv directory (path ending in / or .d), PostgreSQL connection string, or 'keyring'. Overrides the config file. PostgreSQL credentials must NOT be embedded in the connection string." env:"FOODMOOD_DATABASE"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init       system.InitCmd        `cmd:"" help:"Initialize foodmood storage."`
	Migrate    system.MigrateCmd     `cmd:"" help:"Run database migrations."`
	Doctor     system.DoctorCmd      `cmd:"" help:"Run health checks and diagnostics."`
	DebugCmd   system.DebugCmd       `cmd:"" name:"debug" help:"Debugging helpers." hidden:""`
	Tui        system.TuiCmd         `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add        entries.AddCmd        `cmd:"" help:"Add a food, activity or mood to a day."`
	Remove     entries.RemoveCmd     `cmd:"" help:"Remove a food, activity or mood from a day."`
	Show       entries.ShowCmd       `cmd:"" help:"Show the entry for a day."`
	List       entries.ListCmd       `cmd:"" help:"List logged days."`
	Delete     entries.DeleteCmd     `cmd:"" help:"Delete the whole entry for a day."`
	Calendar   entries.CalendarCmd   `cmd:"" help:"Show a month calendar of logged days."`
	Stats      entries.StatsCmd      `cmd:"" help:"Show totals for the last week, month or all time."`
	Categories entries.CategoriesCmd `cmd:"" help:"List the available categories."`
	Export     data.ExportCmd        `cmd:"" help:"Export every entry to a JSON file."`
	Import     data.ImportCmd        `cmd:"" help:"Replace all entries with the contents of an export file."`
	Backup     struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set        system.KeyringSetCmd        `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete     system.KeyringDeleteCmd     `cmd:"" help:"Remove the stored connection string."`
		Passphrase system.KeyringPassphraseCmd `cmd:"" help:"Store or remove the export passphrase."`
		Status     system.KeyringStatusCmd     `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

// Commands that never touch the entry store.
var storeless = map[string]bool{
	"keyring":    true,
	"categories": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily food, activity and mood log for kids"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: constants.DefaultConfigDir}); err != nil {
		errors.Fatal(err)
	}
	logger.Debug("Loaded config", "file", cfg.File(), "backend", backend.Detect(cfg.Database))

	appCtx := &cli.Context{Config: cfg}

	command := strings.Fields(ctx.Command())[0]
	if !storeless[command] {
		store, err := backend.Open(cfg.Database)
		if err != nil {
			errors.Fatal(err)
		}
		defer store.Close()
		appCtx.Store = store

		// Init handles its own setup
		if command != "init" {
			if err := store.Load(); err != nil {
				errors.Fatal(err)
			}
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}
