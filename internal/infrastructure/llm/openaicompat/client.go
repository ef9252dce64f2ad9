// Package openaicompat implements an answer-generation backend against
// any OpenAI-compatible chat-completions API (self-hosted vLLM/TGI
// gateways, Azure OpenAI, etc.), accepting an arbitrary base URL.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) Generate(ctx context.Context, messages []domain.GenMessage) (string, error) {
	return c.chatCompletion(ctx, map[string]any{
		"model":    c.model,
		"messages": messages,
	})
}

func visionPrompt(mode domain.ImageMode) string {
	switch mode {
	case domain.ImageModeExtractText:
		return "Extract all text visible in this image verbatim. Reply with only the extracted text."
	case domain.ImageModeDescribe:
		return "Describe the content of this image in detail, in the same language as any text it contains."
	default:
		return "If this image primarily contains text, extract it verbatim. Otherwise, describe its content in detail."
	}
}

// AnalyzeImage implements ports.VisionGenerator using the OpenAI
// multimodal content-parts message shape most compatible gateways
// forward unchanged to their underlying vision model.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType string, mode domain.ImageMode) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	return c.chatCompletion(ctx, map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": visionPrompt(mode)},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
	})
}

func (c *Client) chatCompletion(ctx context.Context, reqBody map[string]any) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat completion response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return "", fmt.Errorf("decode chat completion response: %w", err)
	}
	if completion.Error != nil && completion.Error.Message != "" {
		return "", fmt.Errorf("chat completion error: %s", completion.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
