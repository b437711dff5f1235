package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/treescan/internal/export"
	"github.com/agentic-research/treescan/internal/store"
)

func newExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export <file.db>",
		Short: "Export a stored table as CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			filter, _ := cmd.Flags().GetString("filter")
			output, _ := cmd.Flags().GetString("output")
			opts := export.Options{Format: format, Filter: filter}

			if output == "" || output == "-" {
				_, err := exportTo(args[0], cmd.OutOrStdout(), opts)
				return err
			}
			return exportFile(args[0], output, opts)
		},
	}
	f := exportCmd.Flags()
	f.String("format", string(export.FormatCSV), "Output format: csv or json")
	f.String("filter", "", "JSONPath filter over records, e.g. '$[?(@.sub_hidden == true)]'")
	f.StringP("output", "o", "", "Output file (default: stdout)")
	return exportCmd
}

func exportTo(dbPath string, w io.Writer, opts export.Options) (int, error) {
	r, err := store.Open(dbPath)
	if err != nil {
		return 0, fmt.Errorf("open table: %w", err)
	}
	defer func() { _ = r.Close() }()

	n, err := export.Export(r, w, opts)
	if err != nil {
		return n, fmt.Errorf("export %s: %w", dbPath, err)
	}
	return n, nil
}

func exportFile(dbPath, outPath string, opts export.Options) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if _, err := exportTo(dbPath, f, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", outPath, err)
	}
	return nil
}
