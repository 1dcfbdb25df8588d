package constants

const (
	// Config keys
	SettingDatabase             = "database"
	SettingTimezone             = "timezone"
	SettingDebug                = "debug"
	SettingHoldArmDelay         = "hold.arm_delay"
	SettingHoldRepeatInterval   = "hold.repeat_interval"
	SettingNotificationsDesktop = "notifications.desktop"
	SettingNotificationsTray    = "notifications.tray"
	SettingBackupMax            = "backup.max"

	// Default config values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsDesktop = false
	DefaultNotificationsTray    = false
)
