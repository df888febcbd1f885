package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lingo/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lingo",
	Short: "Fluent-style localization toolchain",
	Long:  `lingo parses, checks, formats, and resolves FTL localization resources`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("config", "", "path to lingo.toml (default: search upward from cwd)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the --color flag against terminal detection.
func colorEnabled(cmd *cobra.Command, out *os.File) bool {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch flag {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(out)
	}
}
