package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Florex0Real/linux-system-manager/internal/logging"
	"github.com/Florex0Real/linux-system-manager/internal/web"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard",
		Long: `Collect snapshots in the background and serve the dashboard, the SSE and
websocket streams and the JSON API.

Examples:
  lsm serve
  lsm serve --addr 127.0.0.1:9000 --refresh-interval 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := web.NewServer(web.Params{
				Scheduler:      a.newScheduler(a.cfg.Web.ProcessLimit),
				Processes:      a.newEnumerator(),
				Runner:         a.newRunner(),
				CommandTimeout: a.cfg.Command.Timeout,
				ProcessLimit:   a.cfg.Web.ProcessLimit,
				Logger:         logging.New("web"),
			})
			return srv.Start(ctx, a.cfg.Web.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	_ = a.v.BindPFlag("web.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
