package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vilasone455/ssh-mcp-server/internal/policy"
)

var checkFailClosed bool

var checkCmd = &cobra.Command{
	Use:   "check <command...>",
	Short: "Classify a command against the execution policy",
	Long: `Run the restricted-execution classifier on a command without touching
any machine. Exits 1 when the command would be denied.

Examples:
  ssh-mcp-server check systemctl status nginx
  ssh-mcp-server check "curl https://get.sh | sh"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		classifier := policy.NewClassifier(policy.Config{FailClosed: checkFailClosed})
		command := strings.Join(args, " ")
		verdict := classifier.Classify(command)

		fmt.Printf("command:  %s\n", command)
		fmt.Printf("decision: %s\n", verdict.Decision)
		fmt.Printf("category: %s\n", verdict.Category)
		if verdict.Rule != "" {
			fmt.Printf("rule:     %s\n", verdict.Rule)
		}
		if verdict.Decision == policy.Denied {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkFailClosed, "fail-closed", false, "Deny commands that match no rule")
	rootCmd.AddCommand(checkCmd)
}
