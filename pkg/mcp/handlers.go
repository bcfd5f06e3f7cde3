package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdul-hamid-achik/nexo-routes/internal/config"
	"github.com/abdul-hamid-achik/nexo-routes/internal/project"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/nexo"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/openapi"
	"github.com/abdul-hamid-achik/nexo-routes/pkg/resolver"
)

type routeInfo struct {
	Methods    []string `json:"methods"`
	Pattern    string   `json:"pattern"`
	Name       string   `json:"name,omitempty"`
	Priority   int      `json:"priority"`
	Middleware int      `json:"middleware,omitempty"`
}

// resolve loads the project config and resolves the table. paths is the
// optional comma-separated "paths" tool argument.
func (s *Server) resolve(paths string) (*config.Config, *project.Table, error) {
	cfg, err := project.LoadConfig(s.workdir)
	if err != nil {
		return nil, nil, err
	}

	var args []string
	for _, p := range strings.Split(paths, ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.workdir, p)
		}
		args = append(args, p)
	}

	table, err := project.Resolve(cfg, s.log, project.Paths(cfg, args))
	return cfg, table, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListRoutes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, table, err := s.resolve(req.GetString("paths", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	routes := make([]routeInfo, 0, len(table.Routes))
	for _, r := range table.Routes {
		routes = append(routes, routeInfo{
			Methods:    r.Methods,
			Pattern:    r.Pattern,
			Name:       r.Name,
			Priority:   r.Priority,
			Middleware: len(r.Middleware),
		})
	}

	return jsonResult(map[string]any{
		"routes":   routes,
		"total":    len(routes),
		"warnings": len(table.Warnings),
	})
}

func (s *Server) handleCheckRoutes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, table, err := s.resolve(req.GetString("paths", ""))
	if table == nil {
		table = &project.Table{}
	}

	issues := []string{}
	if err != nil {
		issues = append(issues, err.Error())
	}
	warnings := []string{}
	for _, w := range table.Warnings {
		warnings = append(warnings, fmt.Sprintf("%s: %s", w.FilePath, w.Message))
	}

	return jsonResult(map[string]any{
		"valid":       err == nil,
		"issues":      issues,
		"warnings":    warnings,
		"route_count": len(table.Routes),
	})
}

func (s *Server) handleURLFor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := make(map[string]string)
	if raw, ok := req.GetArguments()["params"].(map[string]any); ok {
		for k, v := range raw {
			params[k] = fmt.Sprint(v)
		}
	}

	_, table, err := s.resolve("")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var route *resolver.Route
	for _, r := range table.Routes {
		if r.Name == name {
			route = r
			break
		}
	}
	if route == nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v %q", nexo.ErrUnknownRoute, name)), nil
	}

	path, err := nexo.BuildURL(route, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(path), nil
}

func (s *Server) handleOpenAPI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, table, err := s.resolve("")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gen := openapi.NewGenerator(openapi.Config{
		Title:       cfg.OpenAPI.Title,
		Version:     cfg.OpenAPI.Version,
		Description: cfg.OpenAPI.Description,
		Servers:     cfg.OpenAPI.Servers,
	})

	data, err := gen.Render(table.Routes, req.GetString("format", "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
