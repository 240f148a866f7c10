package domain

// DefaultKeyPrefix is the storage key namespace used when none is configured.
const DefaultKeyPrefix = "burner:"

// Storage keys, relative to the configured prefix.
const (
	AllTimeCounterKey  = "counter:all_time"
	IntervalSettingKey = "settings:interval_minutes"
)
