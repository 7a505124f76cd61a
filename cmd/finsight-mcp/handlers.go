package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleResolveTicker implements the resolve_ticker tool
func handleResolveTicker(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		company, err := request.RequireString("company")
		if err != nil || company == "" {
			return textResult("Error: company parameter is required"), nil
		}

		resolution := application.Resolver.Resolve(ctx, company)
		switch resolution.Status {
		case models.ResolutionResolved:
			return textResult(fmt.Sprintf("Resolved %q to ticker %s", company, resolution.Ticker)), nil

		case models.ResolutionAmbiguous:
			var b strings.Builder
			fmt.Fprintf(&b, "Multiple companies match %q:\n", company)
			for _, m := range resolution.Matches {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", m.Symbol, m.Name, m.Region)
			}
			b.WriteString("Call again with the intended ticker symbol.")
			return textResult(b.String()), nil

		default:
			logger.Warn().Str("company", company).Str("reason", resolution.Reason).Msg("Resolution failed")
			return textResult(fmt.Sprintf("Resolution failed: %s", resolution.Reason)), nil
		}
	}
}

// handleDataTool adapts one data tool to an MCP handler. Degraded tool
// results are returned as text so the caller sees what went wrong.
func handleDataTool(tool interfaces.Tool, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]string{}
		if ticker := request.GetString("ticker", ""); ticker != "" {
			args["ticker"] = ticker
		}
		if period := request.GetString("period", ""); period != "" {
			args["period"] = period
		}

		result, err := tool.Invoke(ctx, args)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if result.IsError() {
			logger.Warn().Str("tool", tool.Name()).Str("error", result.Err).Msg("Tool returned degraded result")
		}
		return textResult(result.Text()), nil
	}
}

// handleAnalyzeCompany implements the analyze_company tool
func handleAnalyzeCompany(application *app.App, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		company, err := request.RequireString("company")
		if err != nil || company == "" {
			return textResult("Error: company parameter is required"), nil
		}

		run, _, err := application.Analyze(ctx, company)
		if err != nil {
			logger.Error().Err(err).Str("company", company).Msg("Analysis failed")
			return textResult(fmt.Sprintf("Analysis failed: %v", err)), nil
		}

		if run.Resolution != nil && run.Resolution.Status == models.ResolutionAmbiguous {
			var b strings.Builder
			fmt.Fprintf(&b, "Multiple companies match %q:\n", company)
			for _, m := range run.Resolution.Matches {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", m.Symbol, m.Name, m.Region)
			}
			b.WriteString("Call again with the intended ticker symbol.")
			return textResult(b.String()), nil
		}

		return textResult(run.Report), nil
	}
}
