package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vilasone455/ssh-mcp-server/internal/config"
)

var (
	// Global flags
	cfgFile       string
	inventoryPath string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ssh-mcp-server",
	Short: "SSH remote execution gateway for MCP clients",
	Long: `ssh-mcp-server exposes a fleet of SSH machines to MCP clients as
long-lived sessions with policy-mediated command execution.

Core Commands:
  serve        Run the MCP server on stdio
  machines     List the configured machine inventory
  check        Classify a command against the execution policy
  audit        Show recent restricted-execution audit records
  version      Show version information

Sessions persist their working directory across commands, and the
restricted execution path refuses destructive commands before they
ever reach a remote shell.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .ssh-mcp/config.yaml, then ~/.ssh-mcp/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&inventoryPath, "inventory", "", "Machine inventory file (default: machines.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// syncConfigFlagToEnv makes --config visible to the config loader, which
// resolves paths through SSHMCP_CONFIG.
func syncConfigFlagToEnv() {
	if cfgFile != "" {
		os.Setenv("SSHMCP_CONFIG", cfgFile)
	}
}

// loadConfig loads the effective configuration with flag overrides applied.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{Inventory: inventoryPath}
	if verbose {
		overrides.Log.Level = "debug"
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildLogger builds the process logger. Stdout belongs to the MCP
// protocol, so logs go to stderr unless a file is configured.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.Log.File != "" {
		zcfg.OutputPaths = []string{cfg.Log.File}
	}
	return zcfg.Build()
}
