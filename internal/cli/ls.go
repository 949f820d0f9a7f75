package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Florex0Real/linux-system-manager/internal/files"
	"github.com/Florex0Real/linux-system-manager/internal/format"
)

func (a *app) newLsCmd() *cobra.Command {
	var (
		limit     int
		outFormat string
	)
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory, directories first",
		Long: `List a directory the way the dashboards do: directories first, then
files, each group by name ignoring case. The default path is start_dir, or
the home directory when that is unset.

Examples:
  lsm ls
  lsm ls /var/log --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.StartDir
			if len(args) == 1 {
				path = args[0]
			}
			path = files.Resolve(path)

			entries, err := files.List(path)
			if err != nil {
				return err
			}
			entries = files.Truncate(entries, limit)
			if outFormat == formatTable {
				writeEntryTable(cmd.OutOrStdout(), path, entries)
				return nil
			}
			return encode(cmd.OutOrStdout(), outFormat, entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (0 for all)")
	cmd.Flags().StringVarP(&outFormat, "format", "o", formatTable, "output format: table, json or yaml")
	return cmd
}

func writeEntryTable(w io.Writer, path string, entries []files.Entry) {
	fmt.Fprintln(w, path)
	fmt.Fprintf(w, "%-4s %-30s %-12s %-20s %-6s\n", "TYPE", "NAME", "SIZE", "MODIFIED", "PERMS")
	for _, e := range entries {
		fmt.Fprintf(w, "%-4s %-30s %-12s %-20s %-6s\n",
			format.EntryKind(e), format.Truncate(e.Name, 29), format.EntrySize(e),
			e.ModTime.Format(format.TimeLayout), e.Perm)
	}
}
