package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vilasone455/ssh-mcp-server/internal/audit"
)

var auditLast int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent restricted-execution audit records",
	Long: `Print the most recent restricted-execution decisions, newest first.
Requires audit.dir to be configured; the serve process must not be
holding the store open.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Audit.Dir == "" {
			return fmt.Errorf("auditing is not configured (set audit.dir or SSHMCP_AUDIT_DIR)")
		}

		store, err := audit.Open(cfg.Audit.Dir)
		if err != nil {
			return fmt.Errorf("open audit store %s: %w", cfg.Audit.Dir, err)
		}
		defer store.Close() //nolint:errcheck

		records, err := store.Recent(auditLast)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No audit records.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tMACHINE\tCONNECTION\tDECISION\tCATEGORY\tCOMMAND")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.Time.Format("2006-01-02 15:04:05"),
				rec.MachineID, rec.ConnectionID, rec.Decision, rec.Category, rec.Command)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLast, "last", 20, "Number of records to show")
	rootCmd.AddCommand(auditCmd)
}
