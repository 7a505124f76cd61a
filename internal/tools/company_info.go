package tools

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finsight/internal/cache"
	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/providers/eodhd"
)

// CompanyInfoTool fetches general information about a publicly traded company:
// profile, sector, industry, country, website, business summary, and headcount.
type CompanyInfoTool struct {
	cachedTool
	client *eodhd.Client
}

// Compile-time assertion: CompanyInfoTool implements the Tool interface
var _ interfaces.Tool = (*CompanyInfoTool)(nil)

// NewCompanyInfoTool creates a company information tool backed by EODHD.
func NewCompanyInfoTool(client *eodhd.Client, logger arbor.ILogger, opts ...cache.Option) *CompanyInfoTool {
	return &CompanyInfoTool{
		cachedTool: newCachedTool("company_info", DataTTL, logger, opts...),
		client:     client,
	}
}

// Name returns the tool identifier
func (t *CompanyInfoTool) Name() string {
	return "company_info"
}

// Description explains the tool for an LLM prompt
func (t *CompanyInfoTool) Description() string {
	return "Fetches general information about a publicly traded company using its stock ticker, " +
		"including company profile, sector, industry, country, website, business summary, and full-time employees."
}

// Invoke fetches the company profile for args["ticker"].
func (t *CompanyInfoTool) Invoke(ctx context.Context, args map[string]string) (*interfaces.ToolResult, error) {
	ticker := common.NormalizeTicker(args["ticker"])
	if ticker == "" {
		return nil, fmt.Errorf("ticker argument is required")
	}

	if result, ok := t.lookup(ticker); ok {
		return result, nil
	}

	t.logger.Debug().
		Str("tool", t.name).
		Str("ticker", ticker).
		Msg("Cache miss, fetching from provider")

	resp, err := t.client.GetFundamentals(ctx, common.EODHDSymbol(ticker))
	if err != nil {
		return &interfaces.ToolResult{
			Err: fmt.Sprintf("Failed to fetch company info for %s: %v", ticker, err),
		}, nil
	}
	if resp.General == nil {
		return &interfaces.ToolResult{
			Err: fmt.Sprintf("No company information found for %s", ticker),
		}, nil
	}

	g := resp.General
	fields := map[string]interface{}{
		"company_name":          stringOrNil(g.Name),
		"sector":                stringOrNil(g.Sector),
		"industry":              stringOrNil(g.Industry),
		"country":               stringOrNil(g.CountryName),
		"website":               stringOrNil(g.WebURL),
		"long_business_summary": stringOrNil(g.Description),
		"full_time_employees":   intOrNil(g.FullTimeEmployees),
	}

	t.store(ticker, fields)
	return &interfaces.ToolResult{Fields: fields}, nil
}

// stringOrNil maps an empty provider string to the explicit missing marker.
func stringOrNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// intOrNil maps a zero provider count to the explicit missing marker.
func intOrNil(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
