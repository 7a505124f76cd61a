package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderClaude ProviderType = "claude"
)

// ContentRequest is a provider-agnostic content generation request.
type ContentRequest struct {
	Messages    []interfaces.Message
	Model       string
	Temperature float32
	MaxTokens   int
	// OutputSchema, when set, requests structured JSON output matching the
	// schema. Supported natively by Gemini; emulated via system prompt for
	// Claude.
	OutputSchema map[string]interface{}
}

// ContentResponse carries the generated text plus provenance.
type ContentResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// ProviderFactory creates and dispatches to LLM provider clients based on
// configuration and model name.
type ProviderFactory struct {
	claudeConfig common.ClaudeConfig
	geminiConfig common.GeminiConfig
	defaultType  ProviderType
	retryConfig  *RetryConfig
	logger       arbor.ILogger

	claudeClient *anthropic.Client
	geminiClient *genai.Client
}

// NewProviderFactory builds a factory from config. Clients are created
// lazily on first use so a missing API key for an unused provider is not
// an error.
func NewProviderFactory(cfg *common.Config, logger arbor.ILogger) *ProviderFactory {
	defaultType := ProviderType(cfg.LLM.DefaultProvider)
	if defaultType != ProviderClaude {
		defaultType = ProviderGemini
	}

	return &ProviderFactory{
		claudeConfig: cfg.Claude,
		geminiConfig: cfg.Gemini,
		defaultType:  defaultType,
		retryConfig:  NewDefaultRetryConfig(),
		logger:       logger,
	}
}

// DetectProvider determines the provider type from a model name prefix.
// Falls back to the configured default when the model is empty or unknown.
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	lower := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(lower, "claude"):
		return ProviderClaude
	case strings.HasPrefix(lower, "gemini"):
		return ProviderGemini
	default:
		return f.defaultType
	}
}

// NormalizeModel returns the configured default model for the provider when
// the requested model is empty.
func (f *ProviderFactory) NormalizeModel(model string, provider ProviderType) string {
	model = strings.TrimSpace(model)
	if model != "" {
		return model
	}
	if provider == ProviderClaude {
		return f.claudeConfig.Model
	}
	return f.geminiConfig.Model
}

// GenerateContent dispatches a content request to the appropriate provider
// with rate limit retry handling.
func (f *ProviderFactory) GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	provider := f.DetectProvider(req.Model)
	model := f.NormalizeModel(req.Model, provider)

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("messages", len(req.Messages)).
		Msg("Generating LLM content")

	switch provider {
	case ProviderClaude:
		return f.generateWithClaude(ctx, req, model)
	default:
		return f.generateWithGemini(ctx, req, model)
	}
}

// -------------------------------------------------------------------------
// Claude
// -------------------------------------------------------------------------

func (f *ProviderFactory) getClaudeClient() (*anthropic.Client, error) {
	if f.claudeClient != nil {
		return f.claudeClient, nil
	}
	if f.claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}
	client := anthropic.NewClient(option.WithAPIKey(f.claudeConfig.APIKey))
	f.claudeClient = &client
	return f.claudeClient, nil
}

func (f *ProviderFactory) generateWithClaude(ctx context.Context, req *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getClaudeClient()
	if err != nil {
		return nil, err
	}

	systemText, claudeMessages, err := convertMessagesToClaude(req.Messages)
	if err != nil {
		return nil, err
	}

	if req.OutputSchema != nil {
		systemText = appendSchemaInstruction(systemText, req.OutputSchema)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.claudeConfig.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = f.claudeConfig.Temperature
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    claudeMessages,
		Temperature: anthropic.Float(float64(temperature)),
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	var resp *anthropic.Message
	var lastErr error

	for attempt := 0; attempt <= f.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			apiDelay := ExtractRetryDelay(lastErr)
			backoff := f.retryConfig.CalculateBackoff(attempt-1, apiDelay)

			f.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Claude rate limited, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, lastErr = client.Messages.New(ctx, params)
		if lastErr == nil {
			break
		}
		if !IsRateLimitError(lastErr) {
			return nil, fmt.Errorf("claude generation failed: %w", lastErr)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("claude generation failed after %d retries: %w", f.retryConfig.MaxRetries, lastErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("claude returned empty response")
	}

	return &ContentResponse{
		Text:     text.String(),
		Provider: ProviderClaude,
		Model:    model,
	}, nil
}

// convertMessagesToClaude splits out system messages and converts the rest
// to the Anthropic message format.
func convertMessagesToClaude(messages []interfaces.Message) (string, []anthropic.MessageParam, error) {
	var systemParts []string
	var converted []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemParts = append(systemParts, msg.Content)
		case "assistant":
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	if len(converted) == 0 {
		return "", nil, fmt.Errorf("no user or assistant messages provided")
	}

	return strings.Join(systemParts, "\n\n"), converted, nil
}

// appendSchemaInstruction embeds a JSON schema requirement into the system
// prompt for providers without native structured output.
func appendSchemaInstruction(systemText string, schema map[string]interface{}) string {
	instruction := fmt.Sprintf(
		"Respond ONLY with valid JSON matching this schema, with no markdown fences or commentary: %v",
		schema)
	if systemText == "" {
		return instruction
	}
	return systemText + "\n\n" + instruction
}

// -------------------------------------------------------------------------
// Gemini
// -------------------------------------------------------------------------

func (f *ProviderFactory) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	if f.geminiClient != nil {
		return f.geminiClient, nil
	}
	if f.geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	f.geminiClient = client
	return f.geminiClient, nil
}

func (f *ProviderFactory) generateWithGemini(ctx context.Context, req *ContentRequest, model string) (*ContentResponse, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	systemText, contents, err := convertMessagesToGemini(req.Messages)
	if err != nil {
		return nil, err
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = f.geminiConfig.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}
	if req.OutputSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = convertToGenaiSchema(req.OutputSchema)
	}

	var resp *genai.GenerateContentResponse
	var lastErr error

	for attempt := 0; attempt <= f.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			apiDelay := ExtractRetryDelay(lastErr)
			backoff := f.retryConfig.CalculateBackoff(attempt-1, apiDelay)

			f.logger.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Gemini rate limited, retrying")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, lastErr = client.Models.GenerateContent(ctx, model, contents, config)
		if lastErr == nil {
			break
		}
		if !IsRateLimitError(lastErr) {
			return nil, fmt.Errorf("gemini generation failed: %w", lastErr)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("gemini generation failed after %d retries: %w", f.retryConfig.MaxRetries, lastErr)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty response")
	}

	return &ContentResponse{
		Text:     text,
		Provider: ProviderGemini,
		Model:    model,
	}, nil
}

// convertMessagesToGemini extracts system messages into a system instruction
// and converts the remainder to Gemini content turns.
func convertMessagesToGemini(messages []interfaces.Message) (string, []*genai.Content, error) {
	var systemParts []string
	var contents []*genai.Content

	for _, msg := range messages {
		if msg.Role == "system" {
			systemParts = append(systemParts, msg.Content)
			continue
		}

		geminiRole := genai.RoleUser
		if msg.Role == "assistant" {
			geminiRole = genai.RoleModel
		}

		part := genai.NewPartFromText(msg.Content)
		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{part},
		})
	}

	if len(contents) == 0 {
		return "", nil, fmt.Errorf("no user or assistant messages provided")
	}

	return strings.Join(systemParts, "\n\n"), contents, nil
}

// convertToGenaiSchema converts a JSON-schema-style map into a genai.Schema.
func convertToGenaiSchema(schema map[string]interface{}) *genai.Schema {
	result := &genai.Schema{}

	if t, ok := schema["type"].(string); ok {
		switch strings.ToLower(t) {
		case "object":
			result.Type = genai.TypeObject
		case "array":
			result.Type = genai.TypeArray
		case "string":
			result.Type = genai.TypeString
		case "number":
			result.Type = genai.TypeNumber
		case "integer":
			result.Type = genai.TypeInteger
		case "boolean":
			result.Type = genai.TypeBoolean
		}
	}

	if desc, ok := schema["description"].(string); ok {
		result.Description = desc
	}

	if props, ok := schema["properties"].(map[string]interface{}); ok {
		result.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]interface{}); ok {
				result.Properties[name] = convertToGenaiSchema(propMap)
			}
		}
	}

	if items, ok := schema["items"].(map[string]interface{}); ok {
		result.Items = convertToGenaiSchema(items)
	}

	if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				result.Required = append(result.Required, s)
			}
		}
	}
	if required, ok := schema["required"].([]string); ok {
		result.Required = append(result.Required, required...)
	}

	return result
}
