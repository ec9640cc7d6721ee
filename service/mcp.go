package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the analysis tools on an MCP server: the full
// pipeline plus the intake tools for extraction without analysis.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerAnalyzeTool(srv)
	s.registerReportTool(srv)
	s.intake.RegisterMCP(srv)
}

type analyzeReq struct {
	Path string `json:"path"`
}

func (s *Service) registerAnalyzeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pacta_analyze",
		Description: "Run the four-agent contract analysis on a document and return the aggregated risk report.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Path of the contract to analyze"},
			},
			"required": []string{"path"},
		},
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r analyzeReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return mcpError(fmt.Errorf("invalid arguments: %w", err))
		}
		report, err := s.AnalyzeFile(ctx, r.Path)
		if err != nil {
			return mcpError(err)
		}
		return mcpResult(report)
	})
}

type reportReq struct {
	ID string `json:"id"`
}

func (s *Service) registerReportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pacta_report",
		Description: "Fetch a past analysis report by its ID.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "string", "description": "Report ID (rep_...)"},
			},
			"required": []string{"id"},
		},
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r reportReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return mcpError(fmt.Errorf("invalid arguments: %w", err))
		}
		report, err := s.Report(ctx, r.ID)
		if err != nil {
			return mcpError(err)
		}
		return mcpResult(report)
	})
}

func mcpResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Errorf("marshal: %w", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func mcpError(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res, nil
}
