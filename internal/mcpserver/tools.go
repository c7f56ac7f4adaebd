package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers the six gateway operations with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(getAvailableConnectionsTool(), s.handleGetAvailableConnections)
	s.mcpServer.AddTool(createConnectionTool(), s.handleCreateConnection)
	s.mcpServer.AddTool(getConnectionsTool(), s.handleGetConnections)
	s.mcpServer.AddTool(executeCommandTool(), s.handleExecuteCommand)
	s.mcpServer.AddTool(secureExecuteCommandTool(), s.handleSecureExecuteCommand)
	s.mcpServer.AddTool(closeConnectionTool(), s.handleCloseConnection)
}

func getAvailableConnectionsTool() mcp.Tool {
	return mcp.NewTool("get_available_connections",
		mcp.WithDescription("List known machines available for new connections"),
	)
}

func createConnectionTool() mcp.Tool {
	return mcp.NewTool("create_connection",
		mcp.WithDescription("Open a new SSH session against a known machine"),
		mcp.WithString("machine_id",
			mcp.Required(),
			mcp.Description("Machine identifier from get_available_connections"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Display title for the new session"),
		),
	)
}

func getConnectionsTool() mcp.Tool {
	return mcp.NewTool("get_connections",
		mcp.WithDescription("List currently open sessions"),
	)
}

func executeCommandTool() mcp.Tool {
	return mcp.NewTool("execute_command",
		mcp.WithDescription("Execute a command on an open session without policy checks"),
		mcp.WithString("connection_id",
			mcp.Required(),
			mcp.Description("Session identifier from create_connection"),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The command to execute"),
		),
	)
}

func secureExecuteCommandTool() mcp.Tool {
	return mcp.NewTool("secure_execute_command",
		mcp.WithDescription("Execute a command under the safety policy; destructive commands are rejected"),
		mcp.WithString("connection_id",
			mcp.Required(),
			mcp.Description("Session identifier from create_connection"),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The command to execute; denied if it matches a destructive pattern"),
		),
	)
}

func closeConnectionTool() mcp.Tool {
	return mcp.NewTool("close_connection",
		mcp.WithDescription("Close an open session and release its connection"),
		mcp.WithString("connection_id",
			mcp.Required(),
			mcp.Description("Session identifier to close"),
		),
	)
}
