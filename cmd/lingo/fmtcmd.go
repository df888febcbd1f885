package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lingo/internal/diagfmt"
	"lingo/internal/driver"
	"lingo/internal/serializer"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <file.ftl>",
	Short: "Reprint an FTL resource in canonical form",
	Long:  `Fmt parses a resource and serializes it back with normalized whitespace and indentation. Junk is reproduced verbatim, so no content is lost.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("write", false, "write the result back to the file instead of stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]

	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Parse(path, cfg.parserOptions(maxDiagnostics))
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if result.Bag.HasErrors() {
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:   colorEnabled(cmd, os.Stderr),
			Context: true,
		})
	}

	out := serializer.Serialize(result.Resource)
	if write {
		return os.WriteFile(path, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}
