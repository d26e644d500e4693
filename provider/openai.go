package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider translates through an OpenAI-compatible chat completion API.
type OpenAIProvider struct {
	baseURL     string
	model       string
	temperature float32
	client      *openai.Client
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // Falls back to the request key when empty
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	p := &OpenAIProvider{
		baseURL:     cfg.BaseURL,
		model:       model,
		temperature: temperature,
	}
	if cfg.APIKey != "" {
		p.client = p.newClient(cfg.APIKey)
	}
	return p
}

func (p *OpenAIProvider) newClient(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		config.BaseURL = p.baseURL
	}
	return openai.NewClientWithConfig(config)
}

func (p *OpenAIProvider) clientFor(req TranslateRequest) (*openai.Client, error) {
	if p.client != nil {
		return p.client, nil
	}
	if req.APIKey == "" {
		return nil, gotmemo.ErrMissingAPIKey
	}
	return p.newClient(req.APIKey), nil
}

// Translate translates a batch of texts in a single completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	client, err := p.clientFor(req)
	if err != nil {
		return nil, &gotmemo.ProviderError{Message: "OpenAI API call failed", Cause: err}
	}

	userMessage, err := json.Marshal(req.Texts)
	if err != nil {
		return nil, &gotmemo.ProviderError{Message: "encoding request", Cause: err}
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(userMessage)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		pe := &gotmemo.ProviderError{Message: "OpenAI API call failed", Cause: err}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			pe.StatusCode = apiErr.HTTPStatusCode
		}
		return nil, pe
	}

	if len(resp.Choices) == 0 {
		return nil, &gotmemo.ProviderError{Message: "no response from OpenAI"}
	}

	return parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = gotmemo.DefaultSourceLang
	}

	return fmt.Sprintf(`You translate short user interface strings from %s to %s.

Rules:
- Translate each string independently and idiomatically.
- Keep placeholders such as {name}, {{count}}, %%s and $1 unchanged.
- Preserve leading and trailing whitespace.
- Do not add explanations.

Return a JSON object with a single key "translations" holding an array of strings in the same order as the input.
Example: {"translations": ["first", "second"]}`,
		gotmemo.GetLanguageName(sourceLang), gotmemo.GetLanguageName(req.TargetLang))
}

func parseResponse(content string, expectedCount int) ([]string, error) {
	// Try parsing as object first
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: find first array value
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	// Try parsing as direct array
	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &gotmemo.ProviderError{Message: "invalid response format from OpenAI"}
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &gotmemo.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

// Verify OpenAIProvider implements RemoteTranslator
var _ RemoteTranslator = (*OpenAIProvider)(nil)
