package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "droptime"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/droptime"
	DefaultConfigPath  = "~/.config/droptime/droptime.db"
	ConfigFileName     = "config"
	EnvPrefix          = "DROPTIME"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Record keys in the key-value store
	RecordSettings = "settings"
	RecordLogs     = "logs"

	// Countdown constants
	DefaultTimerMinutes = 5
	TimerTick           = time.Second
	TimerDoneMessage    = "Time for your next eye drop!"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "droptime-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "droptime-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.droptime"
	TrayProcessPrefix      = "droptime-tray"

	// Locales supported by the date formatter
	LocaleEnglish  = "en"
	LocaleJapanese = "ja"
	DefaultLocale  = LocaleEnglish

	// DatabaseKeyring as the database setting reads the connection string from the OS keyring
	DatabaseKeyring = "keyring"
)

// Session States
const (
	StateToday SessionState = iota
	StateHistory
	StateSettings
	StateEditSettings
	StateConfirmUndo
	StateConfirmReset
)
