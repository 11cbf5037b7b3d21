package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// ReviewConfig contains the scheduling knobs of the review availability layer.
type ReviewConfig struct {
	// StartOfDayHour is the local hour at which a study day rolls over.
	// Kept away from midnight so late-night reviews count toward the
	// evening's session.
	StartOfDayHour int `mapstructure:"start_of_day_hour" validate:"gte=0,lt=24"`
}
