// Package cli wires the lsm commands together.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Florex0Real/linux-system-manager/internal/config"
	"github.com/Florex0Real/linux-system-manager/internal/errors"
	"github.com/Florex0Real/linux-system-manager/internal/logging"
)

// app is the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	configPath string
	// quiet keeps logs off the terminal, for commands that own the screen.
	quiet bool
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "lsm",
		Short: "Live host telemetry, processes, files and commands",
		Long: `lsm samples CPU, memory, disk, network and sensors, lists processes and
directories, and runs shell commands. It can serve a web dashboard, run a
terminal UI, or answer one-off queries from the shell.

Examples:
  lsm serve --addr :8080
  lsm tui
  lsm snapshot --format yaml
  lsm exec "df -h"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lsm/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error, off")
	flags.Duration("refresh-interval", 0, "minimum time between two collections")
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("refresh_interval", flags.Lookup("refresh-interval"))

	root.AddCommand(
		a.newServeCmd(),
		a.newTUICmd(),
		a.newSnapshotCmd(),
		a.newPsCmd(),
		a.newLsCmd(),
		a.newExecCmd(),
		a.newKillCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits with its status.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load reads configuration and sets up logging before any component is built.
func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.WrapWithSuggestion(err, errors.ErrCodeConfig,
			"Invalid log level", "use debug, info, warn, error or off")
	}

	var out io.Writer = os.Stderr
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.WrapWithSuggestion(err, errors.ErrCodeConfig,
				"Failed to open log file "+cfg.LogFile, "check log_file in your config")
		}
		out = f
	case a.quiet:
		lvl, out = log.OFF, io.Discard
	}
	logging.Configure(lvl, out)
	return nil
}
