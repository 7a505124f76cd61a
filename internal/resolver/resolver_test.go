package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
)

type fakeSearcher struct {
	matches  []models.TickerMatch
	advisory string
	err      error
	calls    int
}

func (f *fakeSearcher) Search(ctx context.Context, keyword string) ([]models.TickerMatch, string, error) {
	f.calls++
	return f.matches, f.advisory, f.err
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) Close() error                          { return nil }

func newTestResolver(searcher *fakeSearcher, llm *fakeLLM) *Resolver {
	return New(searcher, llm, arbor.NewLogger())
}

func TestResolveTickerShapedInputShortCircuits(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeLLM{}
	r := newTestResolver(searcher, llm)

	res := r.Resolve(context.Background(), "AAPL")
	if res.Status != models.ResolutionResolved {
		t.Fatalf("Status = %q, want resolved", res.Status)
	}
	if res.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", res.Ticker)
	}
	if searcher.calls != 0 {
		t.Errorf("search calls = %d, want 0 for ticker-shaped input", searcher.calls)
	}
	if llm.calls != 0 {
		t.Errorf("llm calls = %d, want 0 for ticker-shaped input", llm.calls)
	}
}

func TestResolveSingleMatchAutoSelects(t *testing.T) {
	searcher := &fakeSearcher{matches: []models.TickerMatch{
		{Symbol: "AAPL", Name: "Apple Inc", Region: "United States", MatchScore: 1.0},
	}}
	r := newTestResolver(searcher, &fakeLLM{})

	res := r.Resolve(context.Background(), "Apple")
	if res.Status != models.ResolutionResolved {
		t.Fatalf("Status = %q, want resolved (reason: %s)", res.Status, res.Reason)
	}
	if res.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", res.Ticker)
	}
	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1", searcher.calls)
	}
}

func TestResolveMultipleMatchesRequireSelection(t *testing.T) {
	var matches []models.TickerMatch
	for i := 0; i < 7; i++ {
		matches = append(matches, models.TickerMatch{
			Symbol: fmt.Sprintf("SYM%d", i),
			Name:   fmt.Sprintf("Company %d", i),
			Region: "United States",
		})
	}
	searcher := &fakeSearcher{matches: matches}
	llm := &fakeLLM{}
	r := newTestResolver(searcher, llm)

	res := r.Resolve(context.Background(), "Global Industries")
	if res.Status != models.ResolutionAmbiguous {
		t.Fatalf("Status = %q, want ambiguous", res.Status)
	}
	if res.Ticker != "" {
		t.Errorf("Ticker = %q, want empty: no silent best-match pick", res.Ticker)
	}
	if len(res.Matches) != MaxCandidates {
		t.Errorf("candidates = %d, want %d", len(res.Matches), MaxCandidates)
	}
	if llm.calls != 0 {
		t.Errorf("llm calls = %d, ambiguity must not fall back to LLM", llm.calls)
	}
}

func TestResolveZeroMatchesFallsBackToLLM(t *testing.T) {
	searcher := &fakeSearcher{}
	llm := &fakeLLM{response: "AAPL"}
	r := newTestResolver(searcher, llm)

	res := r.Resolve(context.Background(), "That fruit company")
	if res.Status != models.ResolutionResolved {
		t.Fatalf("Status = %q, want resolved (reason: %s)", res.Status, res.Reason)
	}
	if res.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", res.Ticker)
	}
	if llm.calls != 1 {
		t.Errorf("llm calls = %d, want 1", llm.calls)
	}
}

func TestResolveSearchErrorFallsBackToLLM(t *testing.T) {
	searcher := &fakeSearcher{err: fmt.Errorf("connection refused")}
	llm := &fakeLLM{response: "msft."}
	r := newTestResolver(searcher, llm)

	res := r.Resolve(context.Background(), "Microsoft")
	if res.Status != models.ResolutionResolved {
		t.Fatalf("Status = %q, want resolved (reason: %s)", res.Status, res.Reason)
	}
	if res.Ticker != "MSFT" {
		t.Errorf("Ticker = %q, want MSFT", res.Ticker)
	}
}

func TestResolveAdvisorySurfaced(t *testing.T) {
	searcher := &fakeSearcher{advisory: "API call frequency exceeded"}
	llm := &fakeLLM{response: NotFoundSentinel}
	r := newTestResolver(searcher, llm)

	res := r.Resolve(context.Background(), "Apple")
	if res.Status != models.ResolutionFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if res.Advisory != "API call frequency exceeded" {
		t.Errorf("Advisory = %q, want the provider note surfaced", res.Advisory)
	}
}

func TestResolveLLMFailureModes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"not found sentinel", "Ticker not found", nil},
		{"empty response", "", nil},
		{"prose instead of symbol", "The ticker symbol for Apple is AAPL.", nil},
		{"llm error", "", fmt.Errorf("quota exhausted")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			llm := &fakeLLM{response: tt.response, err: tt.err}
			r := newTestResolver(searcher, llm)

			res := r.Resolve(context.Background(), "Some Obscure Company")
			if res.Status != models.ResolutionFailed {
				t.Fatalf("Status = %q, want failed", res.Status)
			}
			if res.Ticker != "" {
				t.Errorf("Ticker = %q, want empty on failure", res.Ticker)
			}
			if res.Reason == "" {
				t.Error("failed resolution must carry a reason")
			}
		})
	}
}

func TestResolveEmptyInput(t *testing.T) {
	r := newTestResolver(&fakeSearcher{}, &fakeLLM{})
	res := r.Resolve(context.Background(), "   ")
	if res.Status != models.ResolutionFailed {
		t.Fatalf("Status = %q, want failed for empty input", res.Status)
	}
}
