package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lingo"
)

var formatCmd = &cobra.Command{
	Use:   "format [flags] <file.ftl> <message-id>",
	Short: "Resolve one message to final output text",
	Long: `Format loads a resource into a bundle and resolves one message.
Arguments are passed as repeated --arg key=value pairs; values parse as
numbers when they look numeric, strings otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringArray("arg", nil, "argument as key=value (repeatable)")
	formatCmd.Flags().String("locale", "", "locale tag (default: lingo.toml or en)")
	formatCmd.Flags().String("attribute", "", "format this attribute instead of the value")
	formatCmd.Flags().Bool("isolating", false, "wrap placeables in bidi isolation marks")
}

func runFormat(cmd *cobra.Command, args []string) error {
	path, messageID := args[0], args[1]

	argPairs, err := cmd.Flags().GetStringArray("arg")
	if err != nil {
		return err
	}
	localeFlag, err := cmd.Flags().GetString("locale")
	if err != nil {
		return err
	}
	attribute, err := cmd.Flags().GetString("attribute")
	if err != nil {
		return err
	}
	isolating, err := cmd.Flags().GetBool("isolating")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	callArgs, err := parseArgs(argPairs)
	if err != nil {
		return err
	}

	bundle := lingo.NewBundle(cfg.locale(localeFlag), lingo.Options{
		UseIsolating: isolating,
		Resolver:     cfg.resolverOptions(),
	})
	diags, err := bundle.AddResource(string(src))
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}

	var formatted string
	var resolveDiags []lingo.Diagnostic
	if attribute == "" {
		formatted, resolveDiags, err = bundle.FormatMessage(messageID, callArgs)
	} else {
		formatted, resolveDiags, err = bundle.FormatAttribute(messageID, attribute, callArgs)
	}
	if err != nil {
		return err
	}
	for _, d := range resolveDiags {
		fmt.Fprintln(os.Stderr, d.String())
	}
	fmt.Println(formatted)
	return nil
}

// parseArgs turns --arg key=value pairs into resolver arguments.
func parseArgs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("malformed --arg %q, want key=value", pair)
		}
		if num, err := strconv.ParseFloat(value, 64); err == nil {
			out[key] = num
		} else {
			out[key] = value
		}
	}
	return out, nil
}
