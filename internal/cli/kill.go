package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Florex0Real/linux-system-manager/internal/errors"
	"github.com/Florex0Real/linux-system-manager/internal/process"
)

func (a *app) newKillCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "kill <pid>",
		Short: "Send SIGTERM to a process",
		Long: `Ask a process to exit with a single SIGTERM. There is no escalation to
SIGKILL. Without --yes the process is shown and you are asked to confirm.

Examples:
  lsm kill 4242
  lsm kill --yes 4242`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePid(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirmKill(cmd, pid)
				if err != nil || !ok {
					return err
				}
			}

			if err := process.Terminate(cmd.Context(), pid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Process %d terminated\n", pid)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parsePid(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeConfig,
			fmt.Sprintf("%q is not a process id", s),
			"pass a positive pid, e.g. lsm kill 4242")
	}
	return int32(n), nil
}

func confirmKill(cmd *cobra.Command, pid int32) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New(errors.ErrCodeConfig,
			"Refusing to kill without confirmation",
			"pass --yes when stdin is not a terminal")
	}

	rec, err := process.Lookup(cmd.Context(), pid)
	if err != nil {
		return false, err
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Kill process %s (PID: %d)?", rec.Name, rec.Pid)).
				Affirmative("Kill").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		// User cancelled
		return false, nil
	}
	if !confirmed {
		fmt.Fprintln(cmd.OutOrStdout(), "Kill cancelled")
	}
	return confirmed, nil
}
