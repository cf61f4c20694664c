package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ai-chat-bot/internal/contract"
)

// OpenAICompatClient talks to any OpenAI-compatible chat-completions
// endpoint (OpenAI, Groq, OpenRouter, ...). It first asks for strict
// structured output matching the two-field contract; providers that reject
// that mode get one retry with the looser json_object mode.
type OpenAICompatClient struct {
	client *openai.Client
	model  string
}

func NewOpenAICompat(apiKey, baseURL, model string, timeout time.Duration) *OpenAICompatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAICompatClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

var contractSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "assistant_text": {"type": "string"},
    "updated_user_description": {"type": "string"}
  },
  "required": ["assistant_text", "updated_user_description"]
}`)

func strictResponseFormat() *openai.ChatCompletionResponseFormat {
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "assistant_contract",
			Strict: true,
			Schema: contractSchema,
		},
	}
}

func (c *OpenAICompatClient) Invoke(ctx context.Context, req contract.Request) (contract.Response, string) {
	prompt := req.Prompt()

	resp, err := c.create(ctx, req.Meta.Policy, prompt, strictResponseFormat())
	if err != nil && schemaRejected(err) {
		resp, err = c.create(ctx, req.Meta.Policy, prompt, &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		})
	}
	if err != nil {
		return contract.Diagnostic(describeRemoteError(err)), prompt
	}

	if len(resp.Choices) == 0 {
		return contract.Normalize(""), prompt
	}
	return contract.Normalize(resp.Choices[0].Message.Content), prompt
}

func (c *OpenAICompatClient) create(ctx context.Context, system, prompt string, format *openai.ChatCompletionResponseFormat) (openai.ChatCompletionResponse, error) {
	return c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		// Providers disagree on which cap they honor; send both.
		MaxTokens:           400,
		MaxCompletionTokens: 400,
		ResponseFormat:      format,
	})
}

// schemaRejected reports whether the provider refused the strict
// structured-output mode, as opposed to failing for some other reason.
func schemaRejected(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, key := range []string{"json_schema", "response_format", "schema", "strict"} {
		if strings.Contains(msg, key) {
			return true
		}
	}
	return false
}

func describeRemoteError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Remote LLM error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("Remote LLM error %d: %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Sprintf("Remote LLM connection error: %v", err)
}
