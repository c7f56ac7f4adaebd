package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vilasone455/ssh-mcp-server/internal/inventory"
)

var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List the configured machine inventory",
	Long:  `Print the machines the gateway can open sessions to, without credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		inv, err := inventory.Load(cfg.Inventory)
		if err != nil {
			return fmt.Errorf("load inventory %s: %w", cfg.Inventory, err)
		}
		if inv.Len() == 0 {
			fmt.Printf("No machines configured (inventory: %s)\n", cfg.Inventory)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tOS\tADDR\tUSER\tAUTH\tSOURCE")
		for _, m := range inv.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				m.ID, m.Label, m.OS, m.Addr(), m.Username, authKind(m), m.Source)
		}
		return w.Flush()
	},
}

// authKind names the credential a machine authenticates with.
func authKind(m inventory.Machine) string {
	switch {
	case m.UseAgent:
		return "agent"
	case m.KeyFile != "":
		return "key"
	default:
		return "password"
	}
}

func init() {
	rootCmd.AddCommand(machinesCmd)
}
