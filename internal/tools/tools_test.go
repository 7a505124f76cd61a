package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/cache"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/providers/eodhd"
)

// fakeClock is an adjustable clock shared by cache and tool in tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newEODHDTestClient(t *testing.T, handler http.HandlerFunc) *eodhd.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return eodhd.NewClient("test-key",
		eodhd.WithBaseURL(server.URL),
		eodhd.WithRateLimit(1000),
	)
}

const fundamentalsJSON = `{
	"General": {
		"Code": "AAPL",
		"Name": "Apple Inc",
		"Sector": "Technology",
		"Industry": "Consumer Electronics",
		"CountryName": "United States",
		"WebURL": "https://www.apple.com",
		"Description": "Designs and sells consumer electronics.",
		"FullTimeEmployees": 161000
	},
	"Financials": {
		"Income_Statement": {
			"yearly": {
				"2022-12-31": {"totalRevenue": "80.0", "grossProfit": "30.0", "netIncome": "10.0"},
				"2023-12-31": {"totalRevenue": "100.0", "grossProfit": "40.0", "operatingIncome": "30.0"}
			}
		},
		"Balance_Sheet": {
			"yearly": {
				"2023-12-31": {
					"totalAssets": "350.0",
					"totalLiab": "290.0",
					"totalStockholderEquity": "60.0",
					"totalCurrentAssets": "140.0",
					"totalCurrentLiabilities": "145.0"
				}
			}
		},
		"Cash_Flow": {
			"yearly": {
				"2023-12-31": {"totalCashFromOperatingActivities": "110.0"}
			}
		}
	}
}`

func TestCompanyInfoFetchesOncePerTTL(t *testing.T) {
	logger := arbor.NewLogger()
	fetches := 0
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(fundamentalsJSON))
	})

	clock := &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	tool := NewCompanyInfoTool(client, logger, cache.WithClock(clock.Now))

	first, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err)
	require.False(t, first.IsError(), "unexpected tool error: %s", first.Err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Apple Inc", first.Fields["company_name"])
	assert.Equal(t, "Technology", first.Fields["sector"])
	assert.Equal(t, 161000, first.Fields["full_time_employees"])

	clock.Advance(DataTTL - time.Second)
	second, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err)
	assert.True(t, second.Cached, "expected cached result within TTL")
	assert.Equal(t, first.Fields, second.Fields)
	assert.Equal(t, 1, fetches, "expected one provider fetch within TTL")

	clock.Advance(2 * time.Second)
	third, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err)
	assert.False(t, third.Cached, "expected fresh fetch after TTL")
	assert.Equal(t, 2, fetches)
}

func TestCompanyInfoProviderFailure(t *testing.T) {
	logger := arbor.NewLogger()
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})
	tool := NewCompanyInfoTool(client, logger)

	result, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err, "provider failures must not cross the tool boundary as errors")
	assert.True(t, result.IsError())
	assert.Contains(t, result.Err, "AAPL")
	assert.True(t, strings.HasPrefix(result.Text(), "error: "))
}

func TestCompanyInfoMissingTicker(t *testing.T) {
	logger := arbor.NewLogger()
	tool := NewCompanyInfoTool(eodhd.NewClient("k"), logger)

	_, err := tool.Invoke(context.Background(), map[string]string{})
	assert.Error(t, err, "missing ticker is an argument error")
}

func TestCompanyFinancialsMissingFieldsExplicit(t *testing.T) {
	logger := arbor.NewLogger()
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fundamentalsJSON))
	})
	tool := NewCompanyFinancialsTool(client, logger)

	result, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err)
	require.False(t, result.IsError(), "unexpected tool error: %s", result.Err)

	// Every declared field must be present; the latest year omits netIncome
	// so Net Income is explicitly nil, not missing from the map.
	for _, name := range FinancialFieldNames {
		_, ok := result.Fields[name]
		assert.True(t, ok, "field %q must always be present", name)
	}
	assert.Nil(t, result.Fields["Net Income"])
	assert.Equal(t, 100.0, result.Fields["Total Revenue"])
	assert.Equal(t, 110.0, result.Fields["Operating Cash Flow"])

	// Text rendering shows the explicit marker for the nil field
	assert.Contains(t, result.Text(), "Net Income: Not available")
}

func TestRatioAnalysisPropagatesMissingData(t *testing.T) {
	logger := arbor.NewLogger()
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fundamentalsJSON))
	})
	financials := NewCompanyFinancialsTool(client, logger)
	tool := NewRatioAnalysisTool(financials, logger)

	result, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err)
	require.False(t, result.IsError(), "unexpected tool error: %s", result.Err)

	// netIncome is absent from the latest year: sentinel, not a number
	netMargin, ok := result.Fields["Net Profit Margin"].(string)
	require.True(t, ok)
	assert.Contains(t, netMargin, models.MissingDataSentinel("Net Income"))

	grossMargin, ok := result.Fields["Gross Profit Margin"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(grossMargin, "0.40"), "Gross Profit Margin = %q", grossMargin)
}

func TestHistoricalDataSummary(t *testing.T) {
	logger := arbor.NewLogger()
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date": "2023-01-01", "open": 160, "high": 165.5, "low": 150.25, "close": 162.0},
			{"date": "2023-06-15", "open": 180, "high": 200.5, "low": 178.0, "close": 199.0},
			{"date": "2023-12-29", "open": 189, "high": 192.0, "low": 186.5, "close": 190.0}
		]`))
	})
	tool := NewHistoricalDataTool(client, logger)
	tool.clock = func() time.Time {
		return time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC)
	}

	result, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL", "period": "1y"})
	require.NoError(t, err)
	require.False(t, result.IsError(), "unexpected tool error: %s", result.Err)

	assert.Equal(t, "2023-01-01", result.Fields["start_date"])
	assert.Equal(t, "2023-12-29", result.Fields["end_date"])
	assert.Equal(t, 200.5, result.Fields["highest_price"])
	assert.Equal(t, 150.25, result.Fields["lowest_price"])
	assert.Equal(t, 190.0, result.Fields["current_price_at_period_end"])
}

func TestHistoricalDataEmptySeriesIsError(t *testing.T) {
	logger := arbor.NewLogger()
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	tool := NewHistoricalDataTool(client, logger)

	result, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL"})
	require.NoError(t, err)
	assert.True(t, result.IsError(), "an empty series must be an error, not an empty summary")
	assert.Contains(t, result.Err, "No historical data found for AAPL")
}

func TestHistoricalDataUnknownPeriod(t *testing.T) {
	logger := arbor.NewLogger()
	tool := NewHistoricalDataTool(eodhd.NewClient("k"), logger)

	_, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL", "period": "7d"})
	assert.Error(t, err)
}

func TestHistoricalDataCacheKeyedByPeriod(t *testing.T) {
	logger := arbor.NewLogger()
	fetches := 0
	client := newEODHDTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`[{"date": "2023-12-29", "open": 1, "high": 2, "low": 0.5, "close": 1.5}]`))
	})
	tool := NewHistoricalDataTool(client, logger)

	for _, period := range []string{"1y", "6mo", "1y"} {
		_, err := tool.Invoke(context.Background(), map[string]string{"ticker": "AAPL", "period": period})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fetches, "same (ticker, period) within TTL must not refetch")
}
