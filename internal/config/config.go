package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// GenerationConfig contains the recurring-task generation settings.
type GenerationConfig struct {
	// CutoffHour is the local hour (0-23) before which no generation pass
	// runs. The scheduled trigger fires at this hour; earlier manual
	// triggers return zero counts.
	CutoffHour int `mapstructure:"cutoff_hour" validate:"gte=0,lte=23"`

	// Timezone is the IANA zone name the cutoff hour and due dates are
	// evaluated in. "Local" uses the process timezone.
	Timezone string `mapstructure:"timezone" validate:"required"`
}
