package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the sqlite database file
	DefaultDatabasePath = "./librarium.db"
)
