// Package ollama implements the embedding service and one
// answer-generation backend against a local Ollama server.
package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	dimension  int
	httpClient *http.Client
}

func New(baseURL, genModel, embedModel string, dimension int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Embedder implements ports.Embedder against the client's embed model.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Dimension() int {
	return e.client.dimension
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator implements ports.AnswerGenerator via Ollama's chat endpoint,
// which accepts the same role/content message shape the core produces.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, messages []domain.GenMessage) (string, error) {
	reqBody := map[string]any{
		"model":    g.client.genModel,
		"messages": toOllamaMessages(messages),
		"stream":   false,
	}

	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := g.client.postJSON(ctx, "/api/chat", reqBody, &response, "chat"); err != nil {
		return "", wrapTemporaryIfNeeded("chat", err)
	}
	return strings.TrimSpace(response.Message.Content), nil
}

func toOllamaMessages(messages []domain.GenMessage) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{"role": m.Role, "content": m.Content})
	}
	return out
}

// VisionGenerator implements ports.VisionGenerator against Ollama's
// chat endpoint, which accepts inline base64 images on a message via
// its "images" field.
type VisionGenerator struct {
	client *Client
}

func NewVisionGenerator(client *Client) *VisionGenerator {
	return &VisionGenerator{client: client}
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

func (v *VisionGenerator) AnalyzeImage(ctx context.Context, image []byte, _ string, mode domain.ImageMode) (string, error) {
	reqBody := map[string]any{
		"model": v.client.genModel,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": visionPrompt(mode),
				"images":  []string{base64.StdEncoding.EncodeToString(image)},
			},
		},
		"stream": false,
	}

	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := v.client.postJSON(ctx, "/api/chat", reqBody, &response, "vision"); err != nil {
		return "", wrapTemporaryIfNeeded("vision", err)
	}
	return strings.TrimSpace(response.Message.Content), nil
}
