package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agentic-research/treescan/api"
	"github.com/agentic-research/treescan/internal/annotate"
	"github.com/agentic-research/treescan/internal/collect"
	"github.com/agentic-research/treescan/internal/config"
	"github.com/agentic-research/treescan/internal/export"
	"github.com/agentic-research/treescan/internal/store"
	"github.com/agentic-research/treescan/internal/table"
)

func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Walk a file-system tree and write its metadata table",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}
	f := scanCmd.Flags()
	f.BoolP("public", "p", false, "Store literal paths in the table")
	f.Bool("csv", false, "Also write the table as CSV")
	f.String("user-type", "", "User type: multi, stem, arts, other (or 0-3)")
	f.String("output-dir", "", "Directory for output files")
	f.String("desktop-rule", "", "Sub-Desktop-Parent rule: ancestors or literal")
	return scanCmd
}

// applyScanFlags overrides cfg with the flags that were set explicitly.
func applyScanFlags(cmd *cobra.Command, args []string, cfg config.Config) config.Config {
	f := cmd.Flags()
	if len(args) == 1 {
		cfg.Root = args[0]
	}
	if f.Changed("public") {
		cfg.Public, _ = f.GetBool("public")
	}
	if f.Changed("csv") {
		cfg.CSV, _ = f.GetBool("csv")
	}
	if f.Changed("user-type") {
		cfg.UserType, _ = f.GetString("user-type")
	}
	if f.Changed("output-dir") {
		cfg.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("desktop-rule") {
		cfg.DesktopRule, _ = f.GetString("desktop-rule")
	}
	return cfg
}

func runScan(cmd *cobra.Command, args []string) error {
	// 1. Resolve configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg = applyScanFlags(cmd, args, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	rule, err := annotate.ParseDesktopRule(cfg.DesktopRule)
	if err != nil {
		return err
	}

	userType := cfg.UserType
	if userType == "" {
		if userType, err = promptUserType(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	if userType, err = config.NormalizeUserType(userType); err != nil {
		return err
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	// 2. Collect
	start := time.Now()
	volume := filepath.VolumeName(root) + string(filepath.Separator)
	collector := collect.New(collect.OS(volume), collect.Options{
		ProgressEvery: cfg.ProgressEvery,
		Logger:        logger.Sublogger("collect"),
	})
	fmt.Fprintf(cmd.OutOrStdout(), "Scanning %s...\n", root)
	res, err := collector.Collect(root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	// 3. Annotate and build the table
	if err := annotate.Annotate(res.Entries, annotate.Options{DesktopRule: rule}); err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	t := table.Build(res.Entries, cfg.Public)

	// 4. Persist
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base, err := store.NextName(cfg.OutputDir, config.Platform(), userType, cfg.Public)
	if err != nil {
		return err
	}
	dbPath := base + store.ExtDatabase
	if err := writeDatabase(dbPath, t, res, store.Meta{
		Platform:      config.Platform(),
		UserType:      userType,
		Root:          filepath.ToSlash(root),
		Public:        cfg.Public,
		SchemaVersion: api.SchemaVersion,
		Entries:       t.Len(),
		CreatedAt:     time.Now(),
	}); err != nil {
		return err
	}

	outputs := []string{dbPath}
	if cfg.CSV {
		csvPath := base + store.ExtCSV
		if err := exportFile(dbPath, csvPath, export.Options{Format: export.FormatCSV}); err != nil {
			return err
		}
		outputs = append(outputs, csvPath)
	}

	// 5. Summarize
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %s entries (%s) in %s\n",
		humanize.Comma(int64(t.Len())), humanize.Bytes(t.TotalSize()), time.Since(start).Round(time.Millisecond))
	if n := res.Failures.Count(); n > 0 {
		logger.Warnf("%s failures: %d unreadable, %d underived, %d unresolved links",
			humanize.Comma(int64(n)), len(res.Failures.Unreadable), len(res.Failures.Underived), len(res.Failures.Links))
	}
	for _, p := range outputs {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	return nil
}

func writeDatabase(dbPath string, t *table.Table, res *collect.Result, meta store.Meta) error {
	w, err := store.NewSQLiteWriter(dbPath, t.Public)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	if err := w.WriteTable(t); err != nil {
		_ = w.Abort()
		return fmt.Errorf("write table: %w", err)
	}
	if err := w.WriteFailures(res.Failures); err != nil {
		_ = w.Abort()
		return fmt.Errorf("write failures: %w", err)
	}
	if err := w.WriteMeta(meta); err != nil {
		_ = w.Abort()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(dbPath)
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// promptUserType asks until a valid user type is entered or input ends.
func promptUserType(in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, config.UserTypePrompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read user type: %w", err)
			}
			return "", fmt.Errorf("no user type given")
		}
		answer := strings.TrimSpace(scanner.Text())
		t, err := config.NormalizeUserType(answer)
		if err == nil {
			return t, nil
		}
		fmt.Fprintln(out, err)
	}
}
