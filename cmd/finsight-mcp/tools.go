package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createResolveTickerTool returns the resolve_ticker tool definition
func createResolveTickerTool() mcp.Tool {
	return mcp.NewTool("resolve_ticker",
		mcp.WithDescription("Resolve a free-text company name into a canonical ticker symbol, or list candidates when the name is ambiguous"),
		mcp.WithString("company",
			mcp.Required(),
			mcp.Description("Company name or ticker symbol (e.g. 'Apple' or 'AAPL')"),
		),
	)
}

// createCompanyInfoTool returns the company_info tool definition
func createCompanyInfoTool() mcp.Tool {
	return mcp.NewTool("company_info",
		mcp.WithDescription("Fetch the company profile: name, sector, industry, country, website, business summary and workforce size"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol (e.g. AAPL)"),
		),
	)
}

// createCompanyFinancialsTool returns the company_financials tool definition
func createCompanyFinancialsTool() mcp.Tool {
	return mcp.NewTool("company_financials",
		mcp.WithDescription("Fetch the latest annual key figures from the income statement, balance sheet and cash flow statement"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol (e.g. AAPL)"),
		),
	)
}

// createRatioAnalysisTool returns the ratio_analysis tool definition
func createRatioAnalysisTool() mcp.Tool {
	return mcp.NewTool("ratio_analysis",
		mcp.WithDescription("Compute gross margin, net margin, debt-to-equity and current ratio from the latest annual statements"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol (e.g. AAPL)"),
		),
	)
}

// createHistoricalDataTool returns the historical_data tool definition
func createHistoricalDataTool() mcp.Tool {
	return mcp.NewTool("historical_data",
		mcp.WithDescription("Summarise the stock's trading range over a period: highest and lowest prices plus the most recent close"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol (e.g. AAPL)"),
		),
		mcp.WithString("period",
			mcp.Description("History window: 1mo, 3mo, 6mo, 1y, 2y or 5y (default: 1y)"),
		),
	)
}

// createAnalyzeCompanyTool returns the analyze_company tool definition
func createAnalyzeCompanyTool() mcp.Tool {
	return mcp.NewTool("analyze_company",
		mcp.WithDescription("Run the full analysis pipeline for a company and return the Markdown report"),
		mcp.WithString("company",
			mcp.Required(),
			mcp.Description("Company name or ticker symbol"),
		),
	)
}
