package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
)

// ChatService is the slice of the LLM service the agent layer needs.
type ChatService interface {
	Chat(ctx context.Context, messages []interfaces.Message) (string, error)
	ChatStructured(ctx context.Context, messages []interfaces.Message, schema map[string]interface{}) (string, error)
}

// Agent pairs a persona with a set of data tools. Tool outputs are gathered
// up front and injected into the prompt, so a degraded tool result (error
// text) still reaches the model as context rather than aborting the run.
type Agent struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
	Tools     []interfaces.Tool

	llm    ChatService
	logger arbor.ILogger
}

// ExecutionInput describes a single unit of work for an agent.
type ExecutionInput struct {
	// Description is the task prompt, already interpolated.
	Description string

	// ExpectedOutput describes the required shape of the answer.
	ExpectedOutput string

	// Context holds verbatim outputs of prerequisite tasks.
	Context []string

	// ToolArgs are passed to every equipped tool.
	ToolArgs map[string]string

	// OutputSchema, when set, requests structured JSON output.
	OutputSchema map[string]interface{}
}

// NewAgent creates an agent with the given persona and tools.
func NewAgent(name, role, goal, backstory string, tools []interfaces.Tool, llm ChatService, logger arbor.ILogger) *Agent {
	return &Agent{
		Name:      name,
		Role:      role,
		Goal:      goal,
		Backstory: backstory,
		Tools:     tools,
		llm:       llm,
		logger:    logger,
	}
}

// Execute runs the agent against a task: equipped tools are invoked first,
// their outputs are folded into the prompt alongside any prerequisite task
// context, and the combined prompt is sent to the LLM. Only an LLM failure
// returns an error.
func (a *Agent) Execute(ctx context.Context, input ExecutionInput) (string, error) {
	toolSections := a.gatherToolOutput(ctx, input.ToolArgs)

	messages := []interfaces.Message{
		{Role: "system", Content: a.systemPrompt()},
		{Role: "user", Content: buildTaskPrompt(input, toolSections)},
	}

	a.logger.Debug().
		Str("agent", a.Name).
		Int("tools", len(a.Tools)).
		Int("context", len(input.Context)).
		Msg("Executing agent task")

	if input.OutputSchema != nil {
		return a.llm.ChatStructured(ctx, messages, input.OutputSchema)
	}
	return a.llm.Chat(ctx, messages)
}

// gatherToolOutput invokes every equipped tool and renders each result as
// text. Tool-level failures are rendered too so downstream stages see the
// degradation instead of losing a stage.
func (a *Agent) gatherToolOutput(ctx context.Context, args map[string]string) []string {
	if len(a.Tools) == 0 {
		return nil
	}

	sections := make([]string, 0, len(a.Tools))
	for _, tool := range a.Tools {
		result, err := tool.Invoke(ctx, args)
		var text string
		if err != nil {
			a.logger.Warn().
				Str("agent", a.Name).
				Str("tool", tool.Name()).
				Err(err).
				Msg("Tool invocation rejected arguments")
			text = fmt.Sprintf("error: %v", err)
		} else {
			if result.IsError() {
				a.logger.Warn().
					Str("agent", a.Name).
					Str("tool", tool.Name()).
					Str("error", result.Err).
					Msg("Tool returned degraded result")
			}
			text = result.Text()
		}
		sections = append(sections, fmt.Sprintf("[%s]\n%s", tool.Name(), text))
	}
	return sections
}

func (a *Agent) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(a.Role)
	b.WriteString(".\n\nYour goal: ")
	b.WriteString(a.Goal)
	if a.Backstory != "" {
		b.WriteString("\n\nBackground: ")
		b.WriteString(a.Backstory)
	}
	return b.String()
}

func buildTaskPrompt(input ExecutionInput, toolSections []string) string {
	var b strings.Builder
	b.WriteString(input.Description)

	if input.ExpectedOutput != "" {
		b.WriteString("\n\nExpected output:\n")
		b.WriteString(input.ExpectedOutput)
	}

	if len(input.Context) > 0 {
		b.WriteString("\n\nContext from previous tasks:\n")
		for _, c := range input.Context {
			b.WriteString("\n---\n")
			b.WriteString(c)
			b.WriteString("\n")
		}
	}

	if len(toolSections) > 0 {
		b.WriteString("\n\nTool output:\n")
		for _, section := range toolSections {
			b.WriteString("\n")
			b.WriteString(section)
			b.WriteString("\n")
		}
	}

	return b.String()
}
