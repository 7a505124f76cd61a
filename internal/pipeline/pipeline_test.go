package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/agents"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/resolver"
)

// scriptedChat replies from a queue, one reply per stage, recording each
// user prompt so tests can assert on injected context.
type scriptedChat struct {
	replies []string
	prompts []string
	failAt  int // 0-based call index that returns an error; -1 disables
}

func newScriptedChat(replies ...string) *scriptedChat {
	return &scriptedChat{replies: replies, failAt: -1}
}

func (c *scriptedChat) next(messages []interfaces.Message) (string, error) {
	call := len(c.prompts)
	for _, m := range messages {
		if m.Role == "user" {
			c.prompts = append(c.prompts, m.Content)
			break
		}
	}
	if call == c.failAt {
		return "", fmt.Errorf("model unavailable")
	}
	if call >= len(c.replies) {
		return "", fmt.Errorf("no scripted reply for call %d", call)
	}
	return c.replies[call], nil
}

func (c *scriptedChat) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return c.next(messages)
}

func (c *scriptedChat) ChatStructured(ctx context.Context, messages []interfaces.Message, schema map[string]interface{}) (string, error) {
	return c.next(messages)
}

type stubTool struct {
	name   string
	fields map[string]interface{}
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return t.name }
func (t *stubTool) Invoke(ctx context.Context, args map[string]string) (*interfaces.ToolResult, error) {
	return &interfaces.ToolResult{Fields: t.fields}, nil
}

type fakeSearcher struct {
	matches []models.TickerMatch
}

func (f *fakeSearcher) Search(ctx context.Context, keyword string) ([]models.TickerMatch, string, error) {
	return f.matches, "", nil
}

type resolverLLM struct {
	response string
}

func (f *resolverLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return f.response, nil
}
func (f *resolverLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *resolverLLM) Close() error                          { return nil }

const analysisJSON = `{
	"health_summary": "Healthy margins with elevated leverage.",
	"ratios": [
		{"name": "Gross Profit Margin", "formula": "Gross Profit / Total Revenue", "value": "0.40", "interpretation": "solid"},
		{"name": "Net Profit Margin", "formula": "Net Income / Total Revenue", "value": "Cannot calculate due to missing Net Income", "interpretation": "data gap"}
	]
}`

func synthesisReply() string {
	var b strings.Builder
	b.WriteString("# Apple Inc (AAPL)\n\n")
	for _, section := range models.ReportSections {
		b.WriteString("## " + section + "\n\ncontent\n\n")
	}
	return b.String()
}

func testToolset() Toolset {
	return Toolset{
		CompanyInfo: &stubTool{name: "company_info", fields: map[string]interface{}{"company_name": "Apple Inc"}},
		Financials:  &stubTool{name: "company_financials", fields: map[string]interface{}{"Total Revenue": 100.0}},
		Ratios:      &stubTool{name: "ratio_analysis", fields: map[string]interface{}{"Gross Profit Margin": "0.40"}},
		History:     &stubTool{name: "historical_data", fields: map[string]interface{}{"highest_price": 200.5}},
	}
}

func newTestPipeline(t *testing.T, chat agents.ChatService, matches []models.TickerMatch, llmTicker string) *Pipeline {
	t.Helper()
	logger := arbor.NewLogger()
	res := resolver.New(&fakeSearcher{matches: matches}, &resolverLLM{response: llmTicker}, logger)
	tasks := DefaultTasks(testToolset(), chat, logger)
	p, err := New(res, tasks, "1y", logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func singleAppleMatch() []models.TickerMatch {
	return []models.TickerMatch{{Symbol: "AAPL", Name: "Apple Inc", Region: "United States", MatchScore: 1.0}}
}

func TestRunEndToEnd(t *testing.T) {
	chat := newScriptedChat(
		"research output",
		analysisJSON,
		"performance output",
		"news output",
		synthesisReply(),
	)
	p := newTestPipeline(t, chat, singleAppleMatch(), "")

	run, err := p.Run(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !run.Completed() {
		t.Fatal("expected a completed run")
	}
	if run.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", run.Ticker)
	}

	// identification plus the five LLM stages, in order
	wantStages := []string{TaskIdentify, TaskResearch, TaskFinancials, TaskPerformance, TaskNews, TaskSynthesis}
	if len(run.Results) != len(wantStages) {
		t.Fatalf("got %d stage results, want %d", len(run.Results), len(wantStages))
	}
	for i, want := range wantStages {
		if run.Results[i].Task != want {
			t.Errorf("stage %d = %q, want %q", i, run.Results[i].Task, want)
		}
	}

	// the report carries all five sections in fixed order
	pos := -1
	for _, section := range models.ReportSections {
		idx := strings.Index(run.Report, section)
		if idx < 0 {
			t.Errorf("report missing section %q", section)
			continue
		}
		if idx < pos {
			t.Errorf("section %q out of order", section)
		}
		pos = idx
	}

	if run.Analysis == nil {
		t.Fatal("expected parsed structured analysis")
	}
	if run.Analysis.HealthSummary == "" || len(run.Analysis.Ratios) != 2 {
		t.Errorf("unexpected analysis: %+v", run.Analysis)
	}
}

func TestRunFinancialStageReceivesResearchVerbatim(t *testing.T) {
	const research = "Apple designs consumer electronics. Distinctive research output marker."
	chat := newScriptedChat(research, analysisJSON, "perf", "news", synthesisReply())
	p := newTestPipeline(t, chat, singleAppleMatch(), "")

	if _, err := p.Run(context.Background(), "Apple"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(chat.prompts) < 2 {
		t.Fatalf("expected at least 2 LLM calls, got %d", len(chat.prompts))
	}
	if !strings.Contains(chat.prompts[1], research) {
		t.Errorf("financial stage prompt missing verbatim research output:\n%s", chat.prompts[1])
	}
	// synthesis receives every prior stage output
	last := chat.prompts[len(chat.prompts)-1]
	for _, want := range []string{research, "perf", "news"} {
		if !strings.Contains(last, want) {
			t.Errorf("synthesis prompt missing %q", want)
		}
	}
}

func TestRunAmbiguousStopsBeforeStages(t *testing.T) {
	matches := []models.TickerMatch{
		{Symbol: "AAPL", Name: "Apple Inc", Region: "United States"},
		{Symbol: "APLE", Name: "Apple Hospitality REIT", Region: "United States"},
		{Symbol: "APRU", Name: "Apple Rush Company", Region: "United States"},
	}
	chat := newScriptedChat()
	p := newTestPipeline(t, chat, matches, "")

	run, err := p.Run(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("ambiguity is not an error: %v", err)
	}
	if run.Completed() {
		t.Fatal("pipeline must not proceed on ambiguous resolution")
	}
	if run.Resolution.Status != models.ResolutionAmbiguous {
		t.Fatalf("Status = %q, want ambiguous", run.Resolution.Status)
	}
	if len(run.Resolution.Matches) != 3 {
		t.Errorf("candidates = %d, want 3", len(run.Resolution.Matches))
	}
	if len(chat.prompts) != 0 {
		t.Errorf("LLM calls = %d, want 0 before disambiguation", len(chat.prompts))
	}
}

func TestRunResolutionFailureAborts(t *testing.T) {
	chat := newScriptedChat()
	p := newTestPipeline(t, chat, nil, resolver.NotFoundSentinel)

	_, err := p.Run(context.Background(), "Unknown Company")
	if err == nil {
		t.Fatal("expected resolution failure to abort the run")
	}
	if len(chat.prompts) != 0 {
		t.Errorf("LLM stage calls = %d, want 0", len(chat.prompts))
	}
}

func TestRunStageFailureAbortsRemainder(t *testing.T) {
	chat := newScriptedChat("research", analysisJSON, "perf", "news", synthesisReply())
	chat.failAt = 2 // stock performance stage
	p := newTestPipeline(t, chat, singleAppleMatch(), "")

	run, err := p.Run(context.Background(), "Apple")
	if err == nil {
		t.Fatal("expected stage failure to abort")
	}
	if !strings.Contains(err.Error(), TaskPerformance) {
		t.Errorf("error should name the failed stage: %v", err)
	}
	if run.Completed() {
		t.Error("aborted run must not carry a report")
	}
	// earlier stage results were recorded before the abort
	if len(run.Results) != 3 {
		t.Errorf("got %d results, want identification + research + financials", len(run.Results))
	}
}

func TestRunInvalidStructuredOutputAborts(t *testing.T) {
	chat := newScriptedChat("research", "not json at all", "perf", "news", synthesisReply())
	p := newTestPipeline(t, chat, singleAppleMatch(), "")

	_, err := p.Run(context.Background(), "Apple")
	if err == nil {
		t.Fatal("expected invalid structured output to abort")
	}
	if !strings.Contains(err.Error(), TaskFinancials) {
		t.Errorf("error should name the financial stage: %v", err)
	}
}

func TestNewRejectsForwardDependencies(t *testing.T) {
	logger := arbor.NewLogger()
	res := resolver.New(&fakeSearcher{}, &resolverLLM{}, logger)
	tasks := []Task{
		{Name: "a", Context: []string{"b"}},
		{Name: "b"},
	}
	if _, err := New(res, tasks, "1y", logger); err == nil {
		t.Fatal("expected error for dependency on a later task")
	}
}
