// Package mcpserver is the tool dispatch front: it exposes the gateway's
// six operations as MCP tools over stdio.
//
// Results are serialized as JSON text inside the MCP content envelope.
// Errors become tool errors carrying a single human-readable message; the
// wire has no error codes, only the message text.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/vilasone455/ssh-mcp-server/internal/inventory"
	"github.com/vilasone455/ssh-mcp-server/internal/mediator"
	"github.com/vilasone455/ssh-mcp-server/internal/session"
)

// Server wires the inventory, registry, and mediator to the MCP protocol.
type Server struct {
	inv      *inventory.Inventory
	registry *session.Registry
	mediator *mediator.Mediator
	logger   *zap.Logger

	mcpServer *server.MCPServer
}

// New builds the server and registers all tools.
func New(inv *inventory.Inventory, registry *session.Registry, med *mediator.Mediator, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		inv:      inv,
		registry: registry,
		mediator: med,
		logger:   logger,
		mcpServer: server.NewMCPServer(
			"ssh-mcp-server",
			version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout until the
// stream closes.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server listening on stdio")
	return server.ServeStdio(s.mcpServer)
}

// Wire shapes. These are the external contract; field names are part of
// the protocol and must not drift.

type machineInfo struct {
	MachineID string `json:"machine_id"`
	Label     string `json:"label"`
	OS        string `json:"os"`
	Source    string `json:"source"`
}

type connectionInfo struct {
	ConnectionID string `json:"connection_id"`
	MachineID    string `json:"machine_id"`
	Title        string `json:"title"`
	CurrentPath  string `json:"current_path"`
}

type execResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

type closeResult struct {
	Closed bool `json:"closed"`
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError converts a gateway error into a tool error result. Every
// error kind collapses to its message; the protocol carries no codes.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// Handlers.

func (s *Server) handleGetAvailableConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	machines := s.inv.List()
	out := make([]machineInfo, 0, len(machines))
	for _, m := range machines {
		out = append(out, machineInfo{
			MachineID: m.ID,
			Label:     m.Label,
			OS:        m.OS,
			Source:    m.Source,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleCreateConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	machineID, err := req.RequireString("machine_id")
	if err != nil {
		return toolError(err), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return toolError(err), nil
	}

	machine, err := s.inv.Find(machineID)
	if err != nil {
		return toolError(err), nil
	}

	sess, err := s.registry.Create(ctx, machine, title)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(connectionInfo{
		ConnectionID: sess.ConnectionID,
		MachineID:    sess.MachineID,
		Title:        sess.Title,
		CurrentPath:  sess.CurrentPath(),
	})
}

func (s *Server) handleGetConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.registry.List()
	out := make([]connectionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, connectionInfo{
			ConnectionID: sess.ConnectionID,
			MachineID:    sess.MachineID,
			Title:        sess.Title,
			CurrentPath:  sess.CurrentPath(),
		})
	}
	return jsonResult(out)
}

func (s *Server) handleExecuteCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.execute(ctx, req, mediator.Unrestricted)
}

func (s *Server) handleSecureExecuteCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.execute(ctx, req, mediator.Restricted)
}

func (s *Server) execute(ctx context.Context, req mcp.CallToolRequest, mode mediator.Mode) (*mcp.CallToolResult, error) {
	connectionID, err := req.RequireString("connection_id")
	if err != nil {
		return toolError(err), nil
	}
	command, err := req.RequireString("command")
	if err != nil {
		return toolError(err), nil
	}

	result, err := s.mediator.Execute(ctx, connectionID, command, mode)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(execResult{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	})
}

func (s *Server) handleCloseConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	connectionID, err := req.RequireString("connection_id")
	if err != nil {
		return toolError(err), nil
	}
	if err := s.registry.Remove(connectionID); err != nil {
		return toolError(err), nil
	}
	return jsonResult(closeResult{Closed: true})
}
