package cli

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
)

// CreateAdminCommand bootstraps an administrator account. Registration over
// HTTP only ever creates members, so the first admin comes from here.
type CreateAdminCommand struct {
	FullName string
	Email    string
	Password string
}

// NewCreateAdminCommand creates a new CreateAdminCommand
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.FullName, "name", "", "Administrator's full name")
	fs.StringVar(&cmd.Email, "email", "", "Administrator's email address")
	fs.StringVar(&cmd.Password, "password", "", "Password (prompted interactively when omitted)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account in the configured database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -name \"Ada Lovelace\" -email ada@example.com\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FullName == "" {
		return fmt.Errorf("-name is required")
	}
	if cmd.Email == "" {
		return fmt.Errorf("-email is required")
	}

	return nil
}

// Run executes the create-admin command
func (cmd *CreateAdminCommand) Run() error {
	cfg := config.NewConfig()

	password := cmd.Password
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(db.DB, cfg.Auth)
	defer service.Close()

	user, err := service.CreateAdmin(cmd.FullName, cmd.Email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Created administrator %s (%s)\n", user.FullName, user.Email)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(first), nil
}
