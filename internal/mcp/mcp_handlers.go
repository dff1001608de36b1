package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codesight/codesight/core"
	"github.com/codesight/codesight/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg     *contract.Config
	newAnalyzer analyzerFactory
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoURL := request.GetString("repo_url", "")
	if repoURL == "" {
		return mcp.NewToolResultError("repo_url is required"), nil
	}

	cfg, err := applyOverrides(h.baseCfg.Clone(), request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	analyzer, err := h.newAnalyzer(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set up analysis: %v", err)), nil
	}

	report, err := analyzer.Analyze(core.WithSuppressHeader(ctx), repoURL)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// applyOverrides applies the optional tool arguments to a cloned config.
func applyOverrides(cfg *contract.Config, request mcp.CallToolRequest) (*contract.Config, error) {
	if n := request.GetInt("max_commits", 0); n != 0 {
		if n < 0 || n > contract.MaxMaxCommits {
			return nil, fmt.Errorf("max_commits must be between 1 and %d (received %d)", contract.MaxMaxCommits, n)
		}
		cfg.MaxCommits = n
	}
	if k := request.GetInt("hotspot_limit", 0); k != 0 {
		if k < 0 || k > contract.MaxHotspotLimit {
			return nil, fmt.Errorf("hotspot_limit must be between 1 and %d (received %d)", contract.MaxHotspotLimit, k)
		}
		cfg.HotspotLimit = k
		cfg.ReviewLimit = min(cfg.ReviewLimit, k)
	}
	if !request.GetBool("review", true) {
		cfg.ReviewLimit = 0
	}
	return cfg, nil
}
