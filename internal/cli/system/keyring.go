package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/keyring"
	"github.com/julianstephens/foodmood/internal/storage/postgres"
)

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		} else {
			return fmt.Errorf("invalid connection string: %w", err)
		}
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  Use it with: foodmood --database keyring")
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringPassphraseCmd stores or removes the export passphrase
type KeyringPassphraseCmd struct {
	Delete bool `help:"Remove the stored export passphrase."`
}

func (cmd *KeyringPassphraseCmd) Run(ctx *cli.Context) error {
	if cmd.Delete {
		if err := keyring.DeleteExportPassphrase(); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return errors.New("no export passphrase found in keyring")
			}
			return fmt.Errorf("failed to delete export passphrase: %w", err)
		}
		ctx.Println("✓ Export passphrase deleted from OS keyring")
		return nil
	}

	pass, err := cli.ReadPassword("Export passphrase: ")
	if err != nil {
		return err
	}
	confirm, err := cli.ReadPassword("Confirm passphrase: ")
	if err != nil {
		return err
	}
	if pass != confirm {
		return errors.New("passphrases do not match")
	}
	if err := keyring.SetExportPassphrase(pass); err != nil {
		return fmt.Errorf("failed to store export passphrase: %w", err)
	}
	ctx.Println("✓ Export passphrase stored in OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	connStr, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		ctx.Printf("✓ Connection string is stored in keyring: %s\n", postgres.MaskPassword(connStr))
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No connection string stored in keyring")
	}

	_, err = keyring.GetExportPassphrase()
	switch {
	case err == nil:
		ctx.Println("✓ Export passphrase is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No export passphrase stored in keyring")
	}
	return nil
}
