package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
)

// Service implements interfaces.LLMService on top of the provider factory.
type Service struct {
	factory *ProviderFactory
	model   string
	logger  arbor.ILogger
}

// NewService creates an LLM service bound to the given model. An empty model
// uses the factory's default provider and its configured model.
func NewService(factory *ProviderFactory, model string, logger arbor.ILogger) *Service {
	return &Service{
		factory: factory,
		model:   model,
		logger:  logger,
	}
}

// Chat sends a conversation to the configured provider and returns the
// generated text.
func (s *Service) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	resp, err := s.factory.GenerateContent(ctx, &ContentRequest{
		Messages: messages,
		Model:    s.model,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ChatStructured sends a conversation and requests JSON output matching the
// given schema. The returned string is the raw JSON text with any markdown
// fences stripped.
func (s *Service) ChatStructured(ctx context.Context, messages []interfaces.Message, schema map[string]interface{}) (string, error) {
	resp, err := s.factory.GenerateContent(ctx, &ContentRequest{
		Messages:     messages,
		Model:        s.model,
		OutputSchema: schema,
	})
	if err != nil {
		return "", err
	}
	return StripJSONFences(resp.Text), nil
}

// HealthCheck verifies the provider responds to a minimal prompt.
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: "Reply with the single word: ok"},
	})
	if err != nil {
		return fmt.Errorf("llm health check failed: %w", err)
	}
	return nil
}

// Close releases provider resources.
func (s *Service) Close() error {
	// Provider SDK clients hold no resources requiring explicit release.
	return nil
}

// StripJSONFences removes markdown code fences that models sometimes wrap
// around JSON responses.
func StripJSONFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	return trimmed
}

// Interface compliance check
var _ interfaces.LLMService = (*Service)(nil)
