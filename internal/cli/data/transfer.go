package data

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/keyring"
	"github.com/julianstephens/foodmood/internal/logger"
	"github.com/julianstephens/foodmood/internal/notice"
	"github.com/julianstephens/foodmood/internal/transfer"
)

type ExportCmd struct {
	Out     string `help:"Output file. Defaults to foodmood-export-<date>.json in the current directory; '-' writes to stdout." short:"o"`
	Encrypt bool   `help:"Encrypt the export with a passphrase (age scrypt)." short:"e"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	var pass string
	if c.Encrypt {
		var err error
		if pass, err = exportPassphrase(true); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	n, err := transfer.Export(ctx.Background(), ctx.Store, &buf, transfer.ExportOptions{
		Passphrase: pass,
		Clock:      ctx.Clock,
	})
	if err != nil {
		ctx.Notify(notice.Error("Export failed"))
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Out == "-" {
		_, err := ctx.Writer().Write(buf.Bytes())
		return err
	}

	path := c.Out
	if path == "" {
		path = transfer.FileName(ctx.Today())
		if c.Encrypt {
			path += ".age"
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		ctx.Notify(notice.Error("Export failed"))
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	msg := notice.Success("Exported %d entries", n)
	ctx.Notify(msg)
	ctx.Printf("✓ %s to %s\n", msg.Text, filepath.Clean(path))
	return nil
}

type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"Export file to import. Replaces every existing entry."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	// Validate before asking so a bad file never prompts
	if !transfer.IsEncrypted(raw) {
		if _, _, err := transfer.Parse(raw); err != nil {
			ctx.Notify(notice.FromError(err))
			return err
		}
	}

	if !c.Yes {
		existing, err := ctx.Store.GetAllEntries(ctx.Background())
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			ok, err := cli.Confirm(
				"Replace all entries?",
				fmt.Sprintf("Importing deletes the %d entries currently stored.", len(existing)),
			)
			if err != nil {
				return err
			}
			if !ok {
				ctx.Println("Cancelled.")
				return nil
			}
		}
	}

	// Snapshot before the store is replaced
	ctx.PerformAutomaticBackup()

	res, err := transfer.Import(ctx.Background(), ctx.Store, bytes.NewReader(raw), transfer.ImportOptions{
		PassphraseFunc: func() (string, error) { return exportPassphrase(false) },
	})
	if err != nil {
		ctx.Notify(notice.FromError(err))
		return err
	}

	msg := notice.Success("Imported %d entries", res.Imported)
	ctx.Notify(msg)
	ctx.Printf("✓ %s\n", msg.Text)
	if res.Skipped > 0 {
		ctx.Printf("  Skipped %d invalid or duplicate records\n", res.Skipped)
	}
	return nil
}

// exportPassphrase prefers the keyring and falls back to a prompt. New
// passphrases are asked twice.
func exportPassphrase(confirm bool) (string, error) {
	pass, err := keyring.GetExportPassphrase()
	if err == nil {
		return pass, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("Keyring unavailable for export passphrase", "error", err)
	}

	pass, err = cli.ReadPassword("Passphrase: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", transfer.ErrPassphraseRequired
	}
	if confirm {
		again, err := cli.ReadPassword("Confirm passphrase: ")
		if err != nil {
			return "", err
		}
		if again != pass {
			return "", errors.New("passphrases do not match")
		}
	}
	return pass, nil
}
