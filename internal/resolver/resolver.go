package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

// MaxCandidates caps how many matches an ambiguous resolution presents.
const MaxCandidates = 5

// NotFoundSentinel is the phrase the identification prompt instructs the
// model to return when it cannot determine a ticker.
const NotFoundSentinel = "Ticker not found"

// maxFallbackTokenLen bounds a plausible ticker token from the LLM fallback.
// Anything longer is prose, not a symbol.
const maxFallbackTokenLen = 7

// Searcher is the symbol-search capability the resolver depends on.
type Searcher interface {
	Search(ctx context.Context, keyword string) (matches []models.TickerMatch, advisory string, err error)
}

// Resolver turns free-text company input into a canonical ticker symbol.
// Direct symbol search is tried first; when it yields nothing usable, an
// LLM identification step is the fallback.
type Resolver struct {
	searcher Searcher
	llm      interfaces.LLMService
	logger   arbor.ILogger
}

// New creates a resolver over the given search capability and LLM service.
func New(searcher Searcher, llm interfaces.LLMService, logger arbor.ILogger) *Resolver {
	return &Resolver{
		searcher: searcher,
		llm:      llm,
		logger:   logger,
	}
}

// Resolve determines the canonical ticker for the given company input.
// Outcomes are encoded in the returned Resolution status:
//   - already ticker-shaped input (1-5 uppercase letters) short-circuits
//     without a search call
//   - exactly one search match resolves automatically
//   - multiple matches return the top candidates for an explicit caller
//     decision; no silent best-match pick at this layer
//   - zero matches, a search advisory, or a search error fall back to LLM
//     identification, which either resolves or fails
func (r *Resolver) Resolve(ctx context.Context, input string) *models.Resolution {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &models.Resolution{
			Status: models.ResolutionFailed,
			Reason: "empty company input",
		}
	}

	if common.IsTickerSymbol(trimmed) {
		ticker := common.NormalizeTicker(trimmed)
		r.logger.Debug().Str("ticker", ticker).Msg("Input is already ticker-shaped")
		return &models.Resolution{
			Status: models.ResolutionResolved,
			Ticker: ticker,
		}
	}

	matches, advisory, err := r.searcher.Search(ctx, trimmed)
	if err != nil {
		r.logger.Warn().Err(err).Str("input", trimmed).Msg("Symbol search unavailable, using LLM identification")
		return r.resolveWithLLM(ctx, trimmed, advisory)
	}
	if advisory != "" {
		r.logger.Warn().Str("advisory", advisory).Msg("Symbol search returned advisory note")
	}

	switch {
	case len(matches) == 1:
		ticker := common.NormalizeTicker(matches[0].Symbol)
		r.logger.Info().Str("input", trimmed).Str("ticker", ticker).Msg("Resolved ticker from single search match")
		return &models.Resolution{
			Status:   models.ResolutionResolved,
			Ticker:   ticker,
			Advisory: advisory,
		}

	case len(matches) > 1:
		top := matches
		if len(top) > MaxCandidates {
			top = top[:MaxCandidates]
		}
		return &models.Resolution{
			Status:   models.ResolutionAmbiguous,
			Matches:  top,
			Reason:   fmt.Sprintf("%d companies match %q, select one", len(matches), trimmed),
			Advisory: advisory,
		}

	default:
		return r.resolveWithLLM(ctx, trimmed, advisory)
	}
}

// resolveWithLLM asks the model to identify the ticker directly. Unlike the
// search path, this path auto-selects when the model knows the answer.
func (r *Resolver) resolveWithLLM(ctx context.Context, input, advisory string) *models.Resolution {
	prompt := fmt.Sprintf(
		"What is the primary stock ticker symbol for the company %q? "+
			"Respond with only the ticker symbol and nothing else. "+
			"If you cannot determine it, respond with exactly: %s",
		input, NotFoundSentinel)

	response, err := r.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return &models.Resolution{
			Status:   models.ResolutionFailed,
			Reason:   fmt.Sprintf("ticker identification failed: %v", err),
			Advisory: advisory,
		}
	}

	token := strings.Trim(strings.TrimSpace(response), `"'.`)
	switch {
	case token == "":
		return &models.Resolution{
			Status:   models.ResolutionFailed,
			Reason:   "ticker identification returned an empty response",
			Advisory: advisory,
		}
	case strings.Contains(strings.ToLower(token), strings.ToLower(NotFoundSentinel)):
		return &models.Resolution{
			Status:   models.ResolutionFailed,
			Reason:   fmt.Sprintf("no ticker found for %q", input),
			Advisory: advisory,
		}
	case len(token) > maxFallbackTokenLen:
		return &models.Resolution{
			Status:   models.ResolutionFailed,
			Reason:   fmt.Sprintf("ticker identification returned prose instead of a symbol: %q", truncate(token, 60)),
			Advisory: advisory,
		}
	}

	ticker := common.NormalizeTicker(token)
	r.logger.Info().Str("input", input).Str("ticker", ticker).Msg("Resolved ticker via LLM identification")
	return &models.Resolution{
		Status:   models.ResolutionResolved,
		Ticker:   ticker,
		Advisory: advisory,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
