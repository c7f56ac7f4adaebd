package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the gateway version and build identity. MCP clients see the same version in the server handshake.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ssh-mcp-server %s (commit %s, built %s)\n", version, commit, buildDate)
		fmt.Printf("  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
