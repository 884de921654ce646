package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com" +
		"/v1beta/models/" + geminiModel + ":generateContent"
	geminiModel = "gemini-2.5-flash"
)

// GenerateFunc is the signature for text generation, allowing tests
// and degraded modes to substitute a stub.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiClient calls the Gemini generateContent API. Every call is a
// single attempt: the coach is an optional feature and never retries.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Generate sends the prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(
	ctx context.Context, prompt string,
) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini api key not set")
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL, bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(respBody, "error.message").Str
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("gemini API %d: %s", resp.StatusCode, msg)
	}

	text := gjson.GetBytes(
		respBody, "candidates.0.content.parts.0.text",
	).Str
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
