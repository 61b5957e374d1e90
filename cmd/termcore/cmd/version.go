package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/termcore/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	// version needs neither config nor logger
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s v%s\n", info.Name, info.Version)
		fmt.Fprintf(out, "  Git Commit: %s\n", orUnknown(info.Commit))
		fmt.Fprintf(out, "  Build Date: %s\n", orUnknown(info.BuildDate))
		fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:    %s\n", info.Platform)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
