package constants

const (
	// Default slot times
	DefaultMorningTime = "07:00"
	DefaultNoonTime    = "12:00"
	DefaultEveningTime = "18:00"
	DefaultBedtimeTime = "22:00"

	// Default eye drop palette
	DefaultColorGreen  = "#4CAF50"
	DefaultColorBlue   = "#2196F3"
	DefaultColorOrange = "#FF9800"

	// DefaultDropColor is used when a drop is added without a color
	DefaultDropColor = "#9E9E9E"

	// Length of generated eye drop identifiers
	DropIDLength = 8

	// Config keys
	ConfigDatabase      = "database"
	ConfigTimezone      = "timezone"
	ConfigLocale        = "locale"
	ConfigTimerMinutes  = "timer_minutes"
	ConfigNotifications = "notifications"
	ConfigDebug         = "debug"

	DefaultTimezone = "Local" // Use system local timezone by default
)
