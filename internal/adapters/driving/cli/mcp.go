package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Tools:
  ask             - answer a question with cited sources
  list_categories - list document categories
  usage_stats     - session usage statistics

Examples:
  # Stdio mode (default, for Claude Desktop)
  docqa mcp

  # HTTP mode (for MCP Inspector, remote access)
  docqa mcp --http localhost:8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "docqa": {
        "command": "/path/to/docqa",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("http") //nolint:errcheck // flag registered in init

	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	server, err := mcp.NewServer(&mcp.Ports{
		Query:     rt.Query,
		Stats:     rt.Stats,
		Catalogue: rt.Catalogue,
	})
	if err != nil {
		return err
	}

	if addr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", addr)
		return server.RunHTTP(commandContext(cmd), addr)
	}
	return server.Run(commandContext(cmd))
}
