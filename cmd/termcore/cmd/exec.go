package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var execJSON bool

var execCmd = &cobra.Command{
	Use:   "exec <line...>",
	Short: "Execute one command line",
	Long: `Execute a single command line in the active mode and print the result.

The arguments are joined back into one line; arguments containing spaces
are quoted again. The exit code is 1 when the result has error status.

Examples:
  termcore exec echo hello
  termcore --mode security-assessment exec hash --algo=md5 "hello world"
  termcore exec --json uuid`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().BoolVar(&execJSON, "json", false, "print the raw result as JSON")
	// flags after the command name belong to the command line
	execCmd.Flags().SetInterspersed(false)
}

func runExec(cmd *cobra.Command, args []string) error {
	a, err := newApp(appConfig, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(ctx)
	}()

	result := a.engine.Execute(cmd.Context(), joinLine(args), activeMode)

	out := cmd.OutOrStdout()
	if execJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else if text := renderResult(result); text != "" {
		fmt.Fprintln(out, text)
	}

	if result.IsError() {
		return errCommandFailed
	}
	return nil
}

// joinLine rebuilds a command line from shell arguments, quoting those the
// tokenizer would otherwise split
func joinLine(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
