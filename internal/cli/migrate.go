package cli

import (
	"flag"
	"fmt"
	"os"

	"librarium/internal/config"
	"librarium/internal/database"
)

// MigrateCommand applies pending schema migrations and exits. The server
// also migrates on start; this exists for deployments that migrate as a
// separate release step.
type MigrateCommand struct{}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

// ParseFlags parses command line flags
func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Apply pending schema migrations to the configured database.\n")
	}

	return fs.Parse(args)
}

// Run executes the migrate command
func (cmd *MigrateCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db.DB); err != nil {
		return err
	}

	fmt.Println("Migrations applied")
	return nil
}
