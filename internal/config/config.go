package config

import (
	"time"

	"github.com/spf13/viper"
)

// DatabaseDriver selects which gorm driver the server opens at startup.
type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Reconcile
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}

	Database struct {
		Driver DatabaseDriver
		Path   string // sqlite file path
		DSN    string // postgres connection string
	}

	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int

		// Login throttling configuration
		LoginMaxAttempts int           // Attempts allowed per window (default: 5)
		LoginWindow      time.Duration // Window the attempts are spread over (default: 15m)
	}

	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults
	v.SetDefault("jwt_secret", "")             // Required for serve; checked at startup
	v.SetDefault("auth_token_expiry", "24h")   // Token validity window
	v.SetDefault("auth_bcrypt_cost", 12)       // bcrypt cost factor
	v.SetDefault("auth_login_max_attempts", 5) // Attempts per throttling window
	v.SetDefault("auth_login_window", "15m")

	// Reconciliation sweep defaults
	v.SetDefault("reconcile_enabled", false)
	v.SetDefault("reconcile_schedule", "*/30 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("JWT_SECRET"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			LoginMaxAttempts: v.GetInt("AUTH_LOGIN_MAX_ATTEMPTS"),
			LoginWindow:      v.GetDuration("AUTH_LOGIN_WINDOW"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
