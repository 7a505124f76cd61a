package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finsight/internal/cache"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/providers/alphavantage"
)

// TickerSearchTool searches for ticker symbols by company name or keyword.
// Successful non-empty match lists are cached; advisory and error responses
// are never cached so a throttled keyword can succeed on retry.
type TickerSearchTool struct {
	cachedTool
	client *alphavantage.Client
}

// Compile-time assertion: TickerSearchTool implements the Tool interface
var _ interfaces.Tool = (*TickerSearchTool)(nil)

// NewTickerSearchTool creates a symbol search tool backed by Alpha Vantage.
func NewTickerSearchTool(client *alphavantage.Client, logger arbor.ILogger, opts ...cache.Option) *TickerSearchTool {
	return &TickerSearchTool{
		cachedTool: newCachedTool("ticker_search", SearchTTL, logger, opts...),
		client:     client,
	}
}

// Name returns the tool identifier
func (t *TickerSearchTool) Name() string {
	return "ticker_search"
}

// Description explains the tool for an LLM prompt
func (t *TickerSearchTool) Description() string {
	return "Searches for stock ticker symbols using a company name or keyword. " +
		"Returns a list of potential matches with their ticker symbol, name, region, and match score."
}

// Search looks up ticker candidates for a keyword. The advisory return value
// carries a provider throttling note (treated as zero matches); a non-nil
// error is a hard provider failure.
func (t *TickerSearchTool) Search(ctx context.Context, keyword string) (matches []models.TickerMatch, advisory string, err error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, "", fmt.Errorf("keyword is required")
	}

	cacheKey := strings.ToLower(keyword)
	if v, ok := t.cache.Get(cacheKey); ok {
		if cached, ok := v.([]models.TickerMatch); ok {
			t.logger.Debug().
				Str("tool", t.name).
				Str("keyword", keyword).
				Msg("Cache hit")
			return cached, "", nil
		}
	}

	t.logger.Debug().
		Str("tool", t.name).
		Str("keyword", keyword).
		Msg("Cache miss, fetching from provider")

	raw, err := t.client.SymbolSearch(ctx, keyword)
	if err != nil {
		var advErr *alphavantage.AdvisoryError
		if errors.As(err, &advErr) {
			return nil, advErr.Note, nil
		}
		return nil, "", err
	}

	matches = make([]models.TickerMatch, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, models.TickerMatch{
			Symbol:     m.Symbol,
			Name:       m.Name,
			Region:     m.Region,
			MatchScore: m.MatchScore,
		})
	}

	if len(matches) > 0 {
		t.cache.Set(cacheKey, matches)
	}
	return matches, "", nil
}

// Invoke adapts Search to the Tool interface for agent and MCP use.
func (t *TickerSearchTool) Invoke(ctx context.Context, args map[string]string) (*interfaces.ToolResult, error) {
	keyword := args["keyword"]
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("keyword argument is required")
	}

	matches, advisory, err := t.Search(ctx, keyword)
	if err != nil {
		return &interfaces.ToolResult{
			Err: fmt.Sprintf("Ticker search failed for %q: %v", keyword, err),
		}, nil
	}

	if len(matches) == 0 {
		result := &interfaces.ToolResult{
			Fields:   map[string]interface{}{"message": "No matches found for the given keyword."},
			Advisory: advisory,
		}
		return result, nil
	}

	var lines []string
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s - %s (%s) score=%.2f", m.Symbol, m.Name, m.Region, m.MatchScore))
	}
	return &interfaces.ToolResult{
		Fields: map[string]interface{}{
			"matches": strings.Join(lines, "\n"),
		},
		Advisory: advisory,
	}, nil
}
