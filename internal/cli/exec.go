package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Florex0Real/linux-system-manager/internal/command"
	"github.com/Florex0Real/linux-system-manager/internal/errors"
)

// timedOutExitCode matches timeout(1).
const timedOutExitCode = 124

func (a *app) newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Run a shell command with a timeout",
		Long: `Run a command line through the configured shell, print its output and
exit with its exit code. A command that outlives the timeout is killed along
with everything it started.

Examples:
  lsm exec "df -h"
  lsm exec --timeout 30s -- du -sh /var`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.Join(args, " ")
			res := a.newRunner().Run(cmd.Context(), line, a.cfg.Command.Timeout)

			_, _ = io.WriteString(cmd.OutOrStdout(), res.Stdout)
			if res.Stderr != "" {
				_, _ = io.WriteString(cmd.ErrOrStderr(), res.Stderr)
				if !strings.HasSuffix(res.Stderr, "\n") {
					_, _ = io.WriteString(cmd.ErrOrStderr(), "\n")
				}
			}
			if res.Success {
				return nil
			}
			return errors.NewExitError(exitStatus(res))
		},
	}
	cmd.Flags().Duration("timeout", 0, "kill the command after this long (default 10s)")
	_ = a.v.BindPFlag("command.timeout", cmd.Flags().Lookup("timeout"))
	return cmd
}

// exitStatus maps a result to a shell-style status: signal deaths become
// 128+signal, failures to start become 1.
func exitStatus(res command.Result) int {
	switch {
	case res.TimedOut:
		return timedOutExitCode
	case res.ExitCode > 0:
		return res.ExitCode
	case res.ExitCode < -1:
		return 128 - res.ExitCode
	}
	return 1
}
