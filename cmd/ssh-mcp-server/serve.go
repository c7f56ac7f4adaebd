package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vilasone455/ssh-mcp-server/internal/audit"
	"github.com/vilasone455/ssh-mcp-server/internal/inventory"
	"github.com/vilasone455/ssh-mcp-server/internal/mcpserver"
	"github.com/vilasone455/ssh-mcp-server/internal/mediator"
	"github.com/vilasone455/ssh-mcp-server/internal/metrics"
	"github.com/vilasone455/ssh-mcp-server/internal/policy"
	"github.com/vilasone455/ssh-mcp-server/internal/session"
	"github.com/vilasone455/ssh-mcp-server/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Start the gateway and serve MCP tool calls over stdin/stdout until
the client disconnects. All diagnostics go to stderr or the configured
log file; stdout carries only protocol frames.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		inv := loadInventory(cfg.Inventory, logger)

		var m *metrics.Metrics
		var debugSrv *metrics.Server
		if cfg.Metrics.ListenAddr != "" {
			m = metrics.New()
			debugSrv = metrics.NewServer(cfg.Metrics.ListenAddr, m, logger)
			go func() {
				if err := debugSrv.Start(); err != nil {
					logger.Error("debug listener failed", zap.Error(err))
				}
			}()
		}

		var store *audit.Store
		if cfg.Audit.Dir != "" {
			store, err = audit.Open(cfg.Audit.Dir)
			if err != nil {
				return fmt.Errorf("open audit store %s: %w", cfg.Audit.Dir, err)
			}
		}

		dialer := transport.NewSSHDialer(logger, cfg.ConnectTimeout())
		registry := session.NewRegistry(dialer, session.Options{
			ConnectTimeout: cfg.ConnectTimeout(),
			KnownHostsFile: cfg.Connect.KnownHosts,
			Logger:         logger,
			Metrics:        m,
		})
		classifier := policy.NewClassifier(policy.Config{FailClosed: cfg.Policy.FailClosed})
		med := mediator.New(registry, classifier, mediator.Options{
			Timeout: cfg.ExecTimeout(),
			Audit:   store,
			Metrics: m,
			Logger:  logger,
		})

		srv := mcpserver.New(inv, registry, med, version, logger)
		logger.Info("gateway starting",
			zap.String("version", version),
			zap.Int("machines", inv.Len()),
			zap.Bool("fail_closed", cfg.Policy.FailClosed))

		serveErr := srv.ServeStdio()

		// Client gone; tear down whatever is still open.
		registry.CloseAll()
		if err := store.Close(); err != nil {
			logger.Warn("audit store close failed", zap.Error(err))
		}
		if debugSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := debugSrv.Shutdown(ctx); err != nil {
				logger.Warn("debug listener shutdown failed", zap.Error(err))
			}
		}

		if serveErr != nil {
			return fmt.Errorf("serve: %w", serveErr)
		}
		return nil
	},
}

// loadInventory loads the machine inventory for serving. A missing or
// malformed file is not fatal: the gateway comes up with an empty machine
// list and logs the cause, so a broken inventory edit cannot take the
// whole MCP surface down with it.
func loadInventory(path string, logger *zap.Logger) *inventory.Inventory {
	inv, err := inventory.Load(path)
	if err != nil {
		logger.Error("inventory load failed, serving no machines",
			zap.String("path", path),
			zap.Error(err))
	}
	if inv.Len() == 0 {
		logger.Warn("inventory is empty, no machines to connect to",
			zap.String("path", path))
	}
	return inv
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
