package constants

import "time"

const (
	AppName            = "foodmood"
	DefaultKeyringUser = "database-connection"
	ExportKeyringUser  = "export-passphrase"
	DefaultConfigDir   = "~/.config/foodmood"
	DefaultConfigPath  = "~/.config/foodmood/foodmood.db"
	ConfigFileName     = "config.yaml"
	EnvPrefix          = "FOODMOOD"
	Version            = "v0.3.0"

	// DateFormat is the calendar date layout used for entry keys (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "foodmood-"
	BackupFileSuffix = ".db"

	// Export constants
	ExportVersion    = "1.0"
	ExportFilePrefix = "foodmood-export-"
	ExportFileSuffix = ".json"

	// Hold-to-remove timings
	HoldArmDelay       = 1000 * time.Millisecond
	HoldRepeatInterval = 2000 * time.Millisecond
	HoldTickInterval   = 50 * time.Millisecond
	// HoldReleaseGap is how long a held key may go without an auto-repeat
	// event before the TUI treats it as released.
	HoldReleaseGap = 750 * time.Millisecond

	// Notice lifetimes
	NoticeSuccessDuration = 3 * time.Second
	NoticeErrorDuration   = 5 * time.Second

	// NoticeListenerFile is written to the config dir by a process that
	// wants notices forwarded to it, such as a tray applet.
	NoticeListenerFile = "notice-listener.json"

	// Aggregation windows, in days back from today
	WeekWindowDays  = 7
	MonthWindowDays = 30
)
