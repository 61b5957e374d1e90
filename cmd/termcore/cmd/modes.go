package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/termcore/foundation/term/executor"
	"github.com/msto63/termcore/internal/commands"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List operating modes and their commands",
	Args:  cobra.NoArgs,
	RunE:  runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(cmd *cobra.Command, args []string) error {
	a, err := newApp(appConfig, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(ctx)
	}()

	out := cmd.OutOrStdout()
	for _, info := range commands.Describe() {
		reg := a.engine.Registry(cmd.Context(), info.Name)
		marker := "  "
		if info.Name == activeMode {
			marker = "* "
		}
		fmt.Fprintf(out, "%s%s  %s\n", marker, HeaderStyle.Render(info.Name), MutedStyle.Render(info.Description))
		fmt.Fprintf(out, "    %s\n", strings.Join(reg.Names(), " "))
	}
	fmt.Fprintf(out, "\nBuilt-in: %s\n", strings.Join(executor.ReservedNames(), " "))
	return nil
}
