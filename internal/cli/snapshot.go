package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Florex0Real/linux-system-manager/internal/errors"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

func (a *app) newSnapshotCmd() *cobra.Command {
	var (
		outFormat string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Collect one snapshot and print it",
		Long: `Sample every subsystem once, list the top processes and the start
directory, and print the result. Subsystems that cannot be read are reported
with an error instead of a value.

Examples:
  lsm snapshot
  lsm snapshot --format yaml --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.newScheduler(limit).Collect(cmd.Context())
			return encode(cmd.OutOrStdout(), outFormat, snap)
		},
	}
	cmd.Flags().StringVarP(&outFormat, "format", "o", formatJSON, "output format: json or yaml")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of processes to include (0 for all)")
	return cmd
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, outFormat string, v any) error {
	switch outFormat {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeConfig,
		fmt.Sprintf("unknown format %q", outFormat),
		"use json or yaml")
}
