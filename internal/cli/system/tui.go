package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/foodmood/internal/cli"
	"github.com/julianstephens/foodmood/internal/keyring"
	"github.com/julianstephens/foodmood/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	opts := tui.Options{
		Editor:       ctx.Editor(),
		Hold:         ctx.Config.HoldTimings(),
		Clock:        ctx.Clock,
		Passphrase:   keyring.GetExportPassphrase,
		BeforeImport: ctx.PerformAutomaticBackup,
	}
	if _, ok := ctx.SQLite(); ok {
		opts.Backup = func() (string, error) {
			mgr, err := ctx.BackupManager()
			if err != nil {
				return "", err
			}
			return mgr.CreateBackup()
		}
	}

	model := tui.NewModel(opts)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
