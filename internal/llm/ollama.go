package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-chat-bot/internal/contract"
)

// OllamaClient talks to a local Ollama server via /api/generate. The policy
// text travels as the "system" field and the serialized request as the
// prompt, with format=json requested.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllama(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaErrorResponse struct {
	Error string `json:"error"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (c *OllamaClient) Invoke(ctx context.Context, req contract.Request) (contract.Response, string) {
	prompt := req.Prompt()

	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:   c.model,
		System:  req.Meta.Policy,
		Prompt:  prompt,
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: 0.2, NumPredict: 400},
	})
	if err != nil {
		return contract.Diagnostic(fmt.Sprintf("Ollama request encode error: %v", err)), prompt
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return contract.Diagnostic(fmt.Sprintf("Ollama request error: %v", err)), prompt
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return contract.Diagnostic(fmt.Sprintf("Ollama connection error: %v", err)), prompt
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contract.Diagnostic(fmt.Sprintf("Ollama read error: %v", err)), prompt
	}

	if resp.StatusCode >= 400 {
		return contract.Diagnostic(c.describeError(ctx, resp.StatusCode, body)), prompt
	}

	var data ollamaGenerateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return contract.Diagnostic(fmt.Sprintf("Ollama returned non-JSON response: %s", truncate(string(body), 200))), prompt
	}

	return contract.Normalize(data.Response), prompt
}

// describeError turns an error status into user-presentable text. The
// "model not found" case additionally lists the models the server has, so
// the misconfiguration is obvious from the chat itself.
func (c *OllamaClient) describeError(ctx context.Context, status int, body []byte) string {
	errText := strings.TrimSpace(string(body))
	var parsed ollamaErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		errText = parsed.Error
	}

	lower := strings.ToLower(errText)
	if strings.Contains(lower, "model") && strings.Contains(lower, "not found") {
		if models := c.listModels(ctx); len(models) > 0 {
			return fmt.Sprintf("Model %q not found. Available: %s", c.model, strings.Join(models, ", "))
		}
		return fmt.Sprintf("Model %q not found. (No model list available.)", c.model)
	}

	return fmt.Sprintf("Ollama error %d: %s", status, errText)
}

func (c *OllamaClient) listModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil
	}
	var names []string
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
