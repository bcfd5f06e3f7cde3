// Package mcp exposes the route table of a project to MCP clients.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/nexo-routes/internal/version"
)

// Server is an MCP server answering route table questions for one working
// directory.
type Server struct {
	workdir   string
	log       logrus.FieldLogger
	mcpServer *server.MCPServer
}

// NewServer creates a Server for workdir and registers its tools.
func NewServer(workdir string, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}

	s := &Server{
		workdir: workdir,
		log:     log,
		mcpServer: server.NewMCPServer(
			"nexo-routes",
			version.GetVersion(),
			server.WithToolCapabilities(false),
		),
	}

	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_routes",
		mcp.WithDescription("List the resolved route table in registration order"),
		mcp.WithString("paths",
			mcp.Description("Comma-separated definition files or directories, relative to the project (default: the configured paths)"),
		),
	), s.handleListRoutes)

	s.mcpServer.AddTool(mcp.NewTool("check_routes",
		mcp.WithDescription("Validate the route definitions and report resolution errors"),
		mcp.WithString("paths",
			mcp.Description("Comma-separated definition files or directories, relative to the project"),
		),
	), s.handleCheckRoutes)

	s.mcpServer.AddTool(mcp.NewTool("url_for",
		mcp.WithDescription("Build the path of a named route"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Route name, e.g. api_users_show"),
		),
		mcp.WithObject("params",
			mcp.Description("Placeholder values keyed by placeholder name"),
		),
	), s.handleURLFor)

	s.mcpServer.AddTool(mcp.NewTool("openapi",
		mcp.WithDescription("Generate an OpenAPI document for the route table"),
		mcp.WithString("format",
			mcp.Description("json or yaml (default json)"),
		),
	), s.handleOpenAPI)
}
