package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/termcore/internal/audit"
)

var (
	auditLimit int
	auditPrune time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent entries of the local audit log",
	Long: `Show the most recent entries of the SQLite audit log at
audit.sqlite_path. Entries are only written when "sqlite" is one of
audit.sinks.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of entries")
	auditCmd.Flags().DurationVar(&auditPrune, "prune", 0, "delete entries older than this age first")
}

func runAudit(cmd *cobra.Command, args []string) error {
	store, err := audit.NewSQLiteSink(appConfig.Audit.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if auditPrune > 0 {
		n, err := store.Prune(ctx, auditPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d entries\n", n)
	}

	records, err := store.Recent(ctx, auditLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MutedStyle.Render("No audit entries"))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMODE\tSTATUS\tDURATION\tCOMMAND")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Local().Format(time.DateTime),
			orDash(r.Mode), r.Status, r.Duration, r.Command)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, MutedStyle.Render(fmt.Sprintf("%d of %d entries", len(records), total)))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
