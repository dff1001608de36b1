// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/codesight/codesight/core"
	"github.com/codesight/codesight/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// analyzerFactory builds an analyzer for one tool call.
type analyzerFactory func(ctx context.Context, cfg *contract.Config) (*core.Analyzer, error)

// NewMCPServer initializes and configures the CodeSight MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, archive contract.ArchiveStore) *server.MCPServer {
	return newMCPServer(baseCfg, func(ctx context.Context, cfg *contract.Config) (*core.Analyzer, error) {
		return core.NewAnalyzerFromConfig(ctx, cfg, archive)
	})
}

func newMCPServer(baseCfg *contract.Config, factory analyzerFactory) *server.MCPServer {
	s := server.NewMCPServer(
		"CodeSight Repository Health Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:     baseCfg,
		newAnalyzer: factory,
	}

	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Analyze a public GitHub repository: bug hotbeds, tech-debt index, pull request collaboration and AI review of the riskiest files."),
		mcp.WithString("repo_url", mcp.Description("Repository URL, e.g. https://github.com/owner/name."), mcp.Required()),
		mcp.WithNumber("max_commits", mcp.Description("Number of recent commits to sample (1-1000).")),
		mcp.WithNumber("hotspot_limit", mcp.Description("Number of hotspots to return (1-100).")),
		mcp.WithBoolean("review", mcp.Description("Run AI review of the top hotspots when a model key is configured. Defaults to true.")),
	), h.handleAnalyzeRepository)

	return s
}

// StartMCPServer starts the CodeSight MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, archive contract.ArchiveStore) error {
	s := NewMCPServer(baseCfg, archive)
	return server.ServeStdio(s)
}
