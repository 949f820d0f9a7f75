package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Florex0Real/linux-system-manager/internal/format"
	"github.com/Florex0Real/linux-system-manager/internal/process"
)

func (a *app) newPsCmd() *cobra.Command {
	var (
		limit     int
		outFormat string
	)
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List processes by CPU usage",
		Long: `List running processes, busiest first. Processes that exit while being
read are skipped.

Examples:
  lsm ps
  lsm ps --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.newEnumerator().List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if outFormat == formatTable {
				writeProcessTable(cmd.OutOrStdout(), records)
				return nil
			}
			return encode(cmd.OutOrStdout(), outFormat, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of processes (0 for all)")
	cmd.Flags().StringVarP(&outFormat, "format", "o", formatTable, "output format: table, json or yaml")
	return cmd
}

func writeProcessTable(w io.Writer, records []process.Record) {
	fmt.Fprintf(w, "%-8s %-20s %-8s %-10s %-10s\n", "PID", "NAME", "CPU%", "MEM%", "STATUS")
	for _, p := range records {
		fmt.Fprintf(w, "%-8d %-20s %-8.1f %-10.1f %-10s\n",
			p.Pid, format.Truncate(p.Name, 19), p.CpuPct, p.MemPct, p.Status)
	}
}
