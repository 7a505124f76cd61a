package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finsight/internal/cache"
	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/providers/eodhd"
)

// FinancialFieldNames lists the statement fields the financials tool produces,
// in presentation order. Every field is always present in the result; a value
// the provider did not supply is nil so downstream ratio computation can
// distinguish "zero" from "unknown".
var FinancialFieldNames = []string{
	"Total Revenue",
	"Gross Profit",
	"Operating Income",
	"Net Income",
	"Total Assets",
	"Total Liabilities",
	"Total Equity",
	"Current Assets",
	"Current Liabilities",
	"Operating Cash Flow",
}

// statementLineItems maps each produced field to its EODHD statement section
// and line item key.
var statementLineItems = map[string]struct {
	section string // income, balance, cashflow
	key     string
}{
	"Total Revenue":       {"income", "totalRevenue"},
	"Gross Profit":        {"income", "grossProfit"},
	"Operating Income":    {"income", "operatingIncome"},
	"Net Income":          {"income", "netIncome"},
	"Total Assets":        {"balance", "totalAssets"},
	"Total Liabilities":   {"balance", "totalLiab"},
	"Total Equity":        {"balance", "totalStockholderEquity"},
	"Current Assets":      {"balance", "totalCurrentAssets"},
	"Current Liabilities": {"balance", "totalCurrentLiabilities"},
	"Operating Cash Flow": {"cashflow", "totalCashFromOperatingActivities"},
}

// CompanyFinancialsTool fetches the latest annual key figures from the income
// statement, balance sheet, and cash flow statement for a company.
type CompanyFinancialsTool struct {
	cachedTool
	client *eodhd.Client
}

// Compile-time assertion: CompanyFinancialsTool implements the Tool interface
var _ interfaces.Tool = (*CompanyFinancialsTool)(nil)

// NewCompanyFinancialsTool creates a financial statements tool backed by EODHD.
func NewCompanyFinancialsTool(client *eodhd.Client, logger arbor.ILogger, opts ...cache.Option) *CompanyFinancialsTool {
	return &CompanyFinancialsTool{
		cachedTool: newCachedTool("company_financials", DataTTL, logger, opts...),
		client:     client,
	}
}

// Name returns the tool identifier
func (t *CompanyFinancialsTool) Name() string {
	return "company_financials"
}

// Description explains the tool for an LLM prompt
func (t *CompanyFinancialsTool) Description() string {
	return "Fetches key figures from the latest annual financial statements (income statement, " +
		"balance sheet, cash flow statement) for a publicly traded company using its stock ticker."
}

// Invoke fetches the latest annual statement summary for args["ticker"].
func (t *CompanyFinancialsTool) Invoke(ctx context.Context, args map[string]string) (*interfaces.ToolResult, error) {
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
			Err: fmt.Sprintf("Failed to fetch financial statements for %s: %v", ticker, err),
		}, nil
	}

	var income, balance, cashflow map[string]interface{}
	if resp.Financials != nil {
		income = resp.Financials.IncomeStatement.LatestYearly()
		balance = resp.Financials.BalanceSheet.LatestYearly()
		cashflow = resp.Financials.CashFlow.LatestYearly()
	}
	if income == nil && balance == nil && cashflow == nil {
		return &interfaces.ToolResult{
			Err: fmt.Sprintf("No financial statements found for %s", ticker),
		}, nil
	}

	fields := make(map[string]interface{}, len(FinancialFieldNames))
	for _, name := range FinancialFieldNames {
		item := statementLineItems[name]
		var entry map[string]interface{}
		switch item.section {
		case "income":
			entry = income
		case "balance":
			entry = balance
		case "cashflow":
			entry = cashflow
		}
		fields[name] = statementValue(entry, item.key)
	}

	t.store(ticker, fields)
	return &interfaces.ToolResult{Fields: fields}, nil
}

// statementValue extracts a numeric line item from a raw statement entry.
// EODHD reports values as decimal strings; null, absent, or unparseable
// values are returned as nil (the explicit missing marker).
func statementValue(entry map[string]interface{}, key string) interface{} {
	if entry == nil {
		return nil
	}
	v, ok := entry[key]
	if !ok || v == nil {
		return nil
	}

	switch n := v.(type) {
	case float64:
		return n
	case string:
		if n == "" {
			return nil
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		return f
	default:
		return nil
	}
}
