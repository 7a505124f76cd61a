package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/common"
)

func main() {
	// Load configuration
	configPath := os.Getenv("FINSIGHT_CONFIG")
	if configPath == "" {
		configPath = "finsight.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize minimal logger for MCP server (console only, no file output)
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn") // Minimal logging to avoid cluttering MCP stdio

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"finsight",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register analysis tools
	mcpServer.AddTool(createResolveTickerTool(), handleResolveTicker(application, logger))
	mcpServer.AddTool(createCompanyInfoTool(), handleDataTool(application.Tools.CompanyInfo, logger))
	mcpServer.AddTool(createCompanyFinancialsTool(), handleDataTool(application.Tools.Financials, logger))
	mcpServer.AddTool(createRatioAnalysisTool(), handleDataTool(application.Tools.Ratios, logger))
	mcpServer.AddTool(createHistoricalDataTool(), handleDataTool(application.Tools.History, logger))
	mcpServer.AddTool(createAnalyzeCompanyTool(), handleAnalyzeCompany(application, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
