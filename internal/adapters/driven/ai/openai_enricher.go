package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Ensure OpenAIEnricher implements EnrichmentService
var _ driven.EnrichmentService = (*OpenAIEnricher)(nil)

// maxContentChars bounds how much document content goes into one request.
const maxContentChars = 12000

const systemPrompt = `You summarize technical documentation. Given a document, respond with a JSON object containing "summary" (one or two sentences) and "tags" (three to six short lowercase topic tags). Respond with JSON only.`

// OpenAIEnricher implements EnrichmentService against an OpenAI-compatible
// chat completions API
type OpenAIEnricher struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIEnricher creates a new OpenAI-backed enrichment service
func NewOpenAIEnricher(apiKey, model, baseURL string) (driven.EnrichmentService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIEnricher{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// chatRequest is the request body for the chat completions API
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float32       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// enrichmentPayload is the JSON shape the model is instructed to return
type enrichmentPayload struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Enrich generates a summary and tag list for a document
func (e *OpenAIEnricher) Enrich(ctx context.Context, title, content string) (*driven.Enrichment, error) {
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	reqBody := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\n%s", title, content)},
		},
		Temperature: 0.2,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	resp, err := e.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	payload, err := parsePayload(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse enrichment: %w", err)
	}

	return &driven.Enrichment{
		Summary: payload.Summary,
		Tags:    payload.Tags,
	}, nil
}

// parsePayload decodes the model output, tolerating a fenced code block
// around the JSON.
func parsePayload(content string) (*enrichmentPayload, error) {
	content = strings.TrimSpace(content)
	if after, ok := strings.CutPrefix(content, "```json"); ok {
		content = after
	} else if after, ok := strings.CutPrefix(content, "```"); ok {
		content = after
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	var payload enrichmentPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, err
	}
	if payload.Summary == "" {
		return nil, fmt.Errorf("empty summary in model output")
	}
	return &payload, nil
}

// HealthCheck verifies the enrichment service is available
func (e *OpenAIEnricher) HealthCheck(ctx context.Context) error {
	_, err := e.Enrich(ctx, "health check", "ping")
	return err
}

// Close releases resources held by the enrichment service
func (e *OpenAIEnricher) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// doRequest makes a request to the chat completions API
func (e *OpenAIEnricher) doRequest(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	return &chatResp, nil
}
