package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finsight/internal/cache"
	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/providers/eodhd"
)

// DefaultHistoryPeriod is the history window used when no period is given.
const DefaultHistoryPeriod = "1y"

// periodDurations maps period tokens to their lookback window.
var periodDurations = map[string]time.Duration{
	"1mo": 30 * 24 * time.Hour,
	"3mo": 91 * 24 * time.Hour,
	"6mo": 182 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
	"2y":  2 * 365 * 24 * time.Hour,
	"5y":  5 * 365 * 24 * time.Hour,
}

// HistoricalDataTool fetches historical price data for a ticker over a period
// and summarizes it: period bounds, highest price, lowest price, and the
// closing price at the end of the period.
type HistoricalDataTool struct {
	cachedTool
	client *eodhd.Client
	clock  func() time.Time
}

// Compile-time assertion: HistoricalDataTool implements the Tool interface
var _ interfaces.Tool = (*HistoricalDataTool)(nil)

// NewHistoricalDataTool creates a historical price tool backed by EODHD.
func NewHistoricalDataTool(client *eodhd.Client, logger arbor.ILogger, opts ...cache.Option) *HistoricalDataTool {
	return &HistoricalDataTool{
		cachedTool: newCachedTool("historical_data", DataTTL, logger, opts...),
		client:     client,
		clock:      time.Now,
	}
}

// Name returns the tool identifier
func (t *HistoricalDataTool) Name() string {
	return "historical_data"
}

// Description explains the tool for an LLM prompt
func (t *HistoricalDataTool) Description() string {
	return "Fetches historical stock prices for a given ticker over a specified period (e.g. '1y', '6mo', '3mo') " +
		"and returns a summary including start date, end date, highest price, lowest price, and the closing price at period end."
}

// Invoke fetches the price summary for args["ticker"] over args["period"]
// (default "1y"). Cache entries are keyed by (ticker, period).
func (t *HistoricalDataTool) Invoke(ctx context.Context, args map[string]string) (*interfaces.ToolResult, error) {
	ticker := common.NormalizeTicker(args["ticker"])
	if ticker == "" {
		return nil, fmt.Errorf("ticker argument is required")
	}
	period := args["period"]
	if period == "" {
		period = DefaultHistoryPeriod
	}
	window, ok := periodDurations[period]
	if !ok {
		return nil, fmt.Errorf("unknown period %q", period)
	}

	cacheKey := ticker + "_" + period
	if result, ok := t.lookup(cacheKey); ok {
		return result, nil
	}

	t.logger.Debug().
		Str("tool", t.name).
		Str("ticker", ticker).
		Str("period", period).
		Msg("Cache miss, fetching from provider")

	now := t.clock()
	series, err := t.client.GetEOD(ctx, common.EODHDSymbol(ticker),
		eodhd.WithDateRange(now.Add(-window), now),
		eodhd.WithOrder("a"),
	)
	if err != nil {
		return &interfaces.ToolResult{
			Err: fmt.Sprintf("Failed to fetch historical stock data for %s: %v", ticker, err),
		}, nil
	}
	if len(series) == 0 {
		// An empty series is a fetch error, not a silent empty summary
		return &interfaces.ToolResult{
			Err: fmt.Sprintf("No historical data found for %s for period %s", ticker, period),
		}, nil
	}

	highest := series[0].High
	lowest := series[0].Low
	for _, day := range series {
		if day.High > highest {
			highest = day.High
		}
		if day.Low < lowest {
			lowest = day.Low
		}
	}

	fields := map[string]interface{}{
		"ticker":                      ticker,
		"period":                      period,
		"start_date":                  series[0].DateStr,
		"end_date":                    series[len(series)-1].DateStr,
		"highest_price":               round2(highest),
		"lowest_price":                round2(lowest),
		"current_price_at_period_end": round2(series[len(series)-1].Close),
	}

	t.store(cacheKey, fields)
	return &interfaces.ToolResult{Fields: fields}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
