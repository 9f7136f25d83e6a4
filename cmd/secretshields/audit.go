package secretshields

import (
	"errors"
	"fmt"

	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagAuditJSON  bool
	flagAuditLimit int
	flagAuditYes   bool
)

func init() {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the activity trail of masks, restores and resolutions",
		Long:  "Lists what SecretShields did, newest first. The trail holds pattern ids, counts and exposure ids, never secret values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := audit.NewLog(auditPath(loadSettings(newLogger("audit"))))
			records, err := l.LoadHistory()
			if err != nil {
				return err
			}
			if flagAuditLimit > 0 && len(records) > flagAuditLimit {
				records = records[:flagAuditLimit]
			}
			if flagAuditJSON {
				return report.WriteJSON(cmd.OutOrStdout(), records)
			}
			return report.PrintAudit(cmd.OutOrStdout(), records, printOptions())
		},
	}
	auditCmd.Flags().BoolVar(&flagAuditJSON, "json", false, "print as JSON")
	auditCmd.Flags().IntVarP(&flagAuditLimit, "limit", "n", 50, "show at most this many records (0 for all)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the activity trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !flagAuditYes {
				return errors.New("refusing to clear the audit trail without --yes")
			}
			l := audit.NewLog(auditPath(loadSettings(newLogger("audit"))))
			if err := l.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "audit trail cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&flagAuditYes, "yes", "y", false, "do not ask for confirmation")
	auditCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(auditCmd)
}
