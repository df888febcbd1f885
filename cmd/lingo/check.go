package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lingo/internal/diagfmt"
	"lingo/internal/driver"
	"lingo/internal/sema"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.ftl|directory>",
	Short: "Parse and validate FTL resources",
	Long:  `Check parses and validates one file or every *.ftl file under a directory. Exits non-zero when any error-severity diagnostic is found.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory checking (0=auto)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	popts := cfg.parserOptions(maxDiagnostics)
	vopts := sema.Options{}
	prettyOpts := diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, os.Stderr),
		Context:   true,
		ShowNotes: true,
	}

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	if !st.IsDir() {
		result, err := driver.Check(path, popts, vopts)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, prettyOpts)
		if result.Bag.HasErrors() {
			return fmt.Errorf("%s: check failed", path)
		}
		return nil
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	fileSet, results, err := driver.CheckDir(cmd.Context(), path, popts, vopts, jobs)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	failed := 0
	for _, result := range results {
		diagfmt.Pretty(os.Stderr, result.Bag, fileSet, prettyOpts)
		if result.Bag.HasErrors() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	fmt.Printf("checked %d files\n", len(results))
	return nil
}
