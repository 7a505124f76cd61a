package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/agents"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/resolver"
)

// Task is one pipeline stage: a prompt bound to an agent, with optional
// structured output and declared dependencies on earlier stages.
type Task struct {
	Name string

	// Description is the task prompt template. The placeholders
	// {company_ticker} and {user_company_input} are interpolated per run.
	Description string

	ExpectedOutput string

	Agent *agents.Agent

	// Context names earlier tasks whose outputs are injected verbatim as
	// additional input. Every named task must appear earlier in the list.
	Context []string

	// OutputSchema, when set, enforces the financial analysis output schema
	// on the stage's response.
	OutputSchema map[string]interface{}
}

// TaskResult records one completed stage. Immutable once recorded.
type TaskResult struct {
	Task   string `json:"task"`
	Output string `json:"output"`

	// Analysis is set only for the structured financial analysis stage.
	Analysis *models.FinancialAnalysisOutput `json:"analysis,omitempty"`
}

// RunResult is the outcome of one analysis run.
type RunResult struct {
	Input      string             `json:"input"`
	Resolution *models.Resolution `json:"resolution"`
	Ticker     string             `json:"ticker,omitempty"`
	Results    []TaskResult       `json:"results,omitempty"`

	// Report is the synthesized Markdown report, set when the run completed.
	Report string `json:"report,omitempty"`

	// Analysis is the structured financial analysis output, when produced.
	Analysis *models.FinancialAnalysisOutput `json:"analysis,omitempty"`
}

// Completed reports whether the run produced a report.
func (r *RunResult) Completed() bool {
	return r.Report != ""
}

// Pipeline executes the analysis stages strictly in order. The ticker is
// fixed once resolved and never changes mid-run; a stage never starts before
// the outputs of its declared dependencies exist.
type Pipeline struct {
	resolver *resolver.Resolver
	tasks    []Task
	period   string
	logger   arbor.ILogger
}

// New creates a pipeline over the given resolver and stage list. period is
// the history window token passed to the historical data tool (e.g. "1y").
func New(res *resolver.Resolver, tasks []Task, period string, logger arbor.ILogger) (*Pipeline, error) {
	if err := validateTaskOrder(tasks); err != nil {
		return nil, err
	}
	return &Pipeline{
		resolver: res,
		tasks:    tasks,
		period:   period,
		logger:   logger,
	}, nil
}

// validateTaskOrder rejects a task list where any stage depends on a task
// that does not run before it.
func validateTaskOrder(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.Name == "" {
			return fmt.Errorf("pipeline task with empty name")
		}
		if seen[task.Name] {
			return fmt.Errorf("duplicate pipeline task %q", task.Name)
		}
		for _, dep := range task.Context {
			if !seen[dep] {
				return fmt.Errorf("task %q depends on %q which does not run before it", task.Name, dep)
			}
		}
		seen[task.Name] = true
	}
	return nil
}

// Run resolves the input to a ticker and executes every stage in order.
//
// An ambiguous resolution returns early with the candidate list and a nil
// error; the caller must re-run with a chosen ticker. A failed resolution or
// a stage (LLM) failure aborts the run with an error. Tool-level failures do
// not abort: they flow forward as text for the affected agent to describe.
func (p *Pipeline) Run(ctx context.Context, input string) (*RunResult, error) {
	result := &RunResult{Input: input}

	resolution := p.resolver.Resolve(ctx, input)
	result.Resolution = resolution

	switch resolution.Status {
	case models.ResolutionAmbiguous:
		p.logger.Info().
			Str("input", input).
			Int("candidates", len(resolution.Matches)).
			Msg("Resolution ambiguous, awaiting selection")
		return result, nil
	case models.ResolutionFailed:
		return result, fmt.Errorf("ticker resolution failed: %s", resolution.Reason)
	}

	result.Ticker = resolution.Ticker
	result.Results = append(result.Results, TaskResult{
		Task:   TaskIdentify,
		Output: fmt.Sprintf("Resolved %q to ticker %s", input, resolution.Ticker),
	})

	toolArgs := map[string]string{
		"ticker": resolution.Ticker,
		"period": p.period,
	}

	outputs := map[string]string{}
	for _, task := range p.tasks {
		output, analysis, err := p.runTask(ctx, task, input, resolution.Ticker, toolArgs, outputs)
		if err != nil {
			return result, fmt.Errorf("stage %q failed: %w", task.Name, err)
		}

		outputs[task.Name] = output
		result.Results = append(result.Results, TaskResult{
			Task:     task.Name,
			Output:   output,
			Analysis: analysis,
		})
		if analysis != nil {
			result.Analysis = analysis
		}
	}

	if len(p.tasks) > 0 {
		result.Report = outputs[p.tasks[len(p.tasks)-1].Name]
	}

	p.logger.Info().
		Str("ticker", result.Ticker).
		Int("stages", len(result.Results)).
		Msg("Analysis run complete")
	return result, nil
}

func (p *Pipeline) runTask(ctx context.Context, task Task, input, ticker string, toolArgs map[string]string, outputs map[string]string) (string, *models.FinancialAnalysisOutput, error) {
	contextTexts := make([]string, 0, len(task.Context))
	for _, dep := range task.Context {
		text, ok := outputs[dep]
		if !ok {
			return "", nil, fmt.Errorf("missing output of dependency %q", dep)
		}
		contextTexts = append(contextTexts, text)
	}

	p.logger.Info().Str("stage", task.Name).Str("ticker", ticker).Msg("Running pipeline stage")

	output, err := task.Agent.Execute(ctx, agents.ExecutionInput{
		Description:    interpolate(task.Description, input, ticker),
		ExpectedOutput: task.ExpectedOutput,
		Context:        contextTexts,
		ToolArgs:       toolArgs,
		OutputSchema:   task.OutputSchema,
	})
	if err != nil {
		return "", nil, err
	}

	if task.OutputSchema == nil {
		return output, nil, nil
	}

	analysis, err := parseAnalysisOutput(output)
	if err != nil {
		return "", nil, err
	}
	return output, analysis, nil
}

// parseAnalysisOutput decodes and validates the structured financial
// analysis stage output.
func parseAnalysisOutput(output string) (*models.FinancialAnalysisOutput, error) {
	var analysis models.FinancialAnalysisOutput
	if err := json.Unmarshal([]byte(output), &analysis); err != nil {
		return nil, fmt.Errorf("structured output is not valid JSON: %w", err)
	}
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("structured output failed validation: %w", err)
	}
	return &analysis, nil
}

func interpolate(template, input, ticker string) string {
	out := strings.ReplaceAll(template, "{company_ticker}", ticker)
	return strings.ReplaceAll(out, "{user_company_input}", input)
}
