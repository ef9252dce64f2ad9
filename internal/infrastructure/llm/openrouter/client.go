// Package openrouter implements an answer-generation backend against
// the OpenRouter chat-completions API.
package openrouter

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

const chatCompletionsURL = "https://openrouter.ai/api/v1/chat/completions"

type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type openRouterError struct {
	Error struct {
		Message  string `json:"message"`
		Code     int    `json:"code"`
		Metadata struct {
			ProviderName string `json:"provider_name"`
		} `json:"metadata"`
	} `json:"error"`
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

// AnalyzeImage implements ports.VisionGenerator using the OpenAI-style
// multimodal content-parts shape OpenRouter forwards to vision models.
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
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal openrouter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatCompletionsURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create openrouter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openrouter response: %w", err)
	}

	var apiErr openRouterError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if apiErr.Error.Metadata.ProviderName != "" {
			return "", fmt.Errorf("openrouter error (%s): %s", apiErr.Error.Metadata.ProviderName, apiErr.Error.Message)
		}
		return "", fmt.Errorf("openrouter error: %s", apiErr.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode openrouter response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
