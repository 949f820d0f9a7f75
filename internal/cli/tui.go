package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Florex0Real/linux-system-manager/internal/errors"
	"github.com/Florex0Real/linux-system-manager/internal/tui"
)

func (a *app) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal dashboard",
		Long: `Open a full-screen dashboard with process, file and terminal views.

Logs go to log_file when it is set and are discarded otherwise.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.quiet = true
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New(errors.ErrCodeConfig,
					"lsm tui needs an interactive terminal",
					"use lsm snapshot, lsm ps or lsm ls from scripts")
			}

			model := tui.NewModel(tui.Params{
				Collector:      a.newScheduler(a.cfg.TUI.ProcessLimit),
				Runner:         a.newRunner(),
				CommandTimeout: a.cfg.Command.Timeout,
				ProcessLimit:   a.cfg.TUI.ProcessLimit,
				FileLimit:      a.cfg.TUI.FileLimit,
			})
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
}
