package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultModel = "gpt-4o"

const systemPrompt = `You are an AI assistant for a trade quoting app.
Extract quote details from the transcription.

Strictly output a SINGLE flattened JSON object matching this schema:
{
    "customer_name": "string (infer or use 'Valued Customer')",
    "items": [
        {
            "description": "string",
            "quantity": number,
            "unit_price": number (infer if missing),
            "total": number (quantity * unit_price)
        }
    ],
    "total_amount": number (sum of item totals),
    "notes": "string (summary of work)",
    "upsell_opportunity": boolean
}

Rules:
1. If a price is missing, estimate a reasonable trade price.
2. Calculate totals accurately.
3. If the total value exceeds $10,000, set 'upsell_opportunity' to true.`

// Client extracts structured quote data from a transcript using an
// OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionsRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

func (c *Client) ExtractQuote(ctx context.Context, transcript string) (*RawQuote, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("extraction api key missing")
	}

	reqBody, _ := json.Marshal(chatCompletionsRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Transcription: " + transcript},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})

	endpoint := c.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var cr chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("extraction: empty choices")
	}

	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	var raw RawQuote
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse quote payload: %w", err)
	}
	return &raw, nil
}
