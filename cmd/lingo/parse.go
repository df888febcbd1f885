package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lingo/internal/ast"
	"lingo/internal/diagfmt"
	"lingo/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.ftl>",
	Short: "Parse an FTL resource and list its entries",
	Long:  `Parse reads one FTL file and prints its entries plus any recovery diagnostics. Input is never rejected: malformed spans become junk entries.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
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

	result, err := driver.Parse(args[0], cfg.parserOptions(maxDiagnostics))
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	if format == "json" {
		return diagfmt.JSON(os.Stdout, result.Bag, result.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			Max:              maxDiagnostics,
		})
	}

	if result.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:     colorEnabled(cmd, os.Stderr),
			Context:   true,
			ShowNotes: true,
		})
	}
	printEntries(result.Resource)
	return nil
}

func printEntries(res *ast.Resource) {
	for _, entry := range res.Body {
		switch e := entry.(type) {
		case *ast.Message:
			fmt.Printf("message %s (%d attributes)\n", e.ID.Name, len(e.Attributes))
		case *ast.Term:
			fmt.Printf("term -%s (%d attributes)\n", e.ID.Name, len(e.Attributes))
		case *ast.Comment:
			fmt.Println("comment")
		case *ast.GroupComment:
			fmt.Println("group comment")
		case *ast.ResourceComment:
			fmt.Println("resource comment")
		case *ast.Junk:
			fmt.Printf("junk (%d bytes)\n", len(e.Content))
		}
	}
}
