package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/elisartix/herder/internal/config"
	"github.com/elisartix/herder/internal/logger"
)

// GeminiSDKClient wraps the official Google Gemini Go SDK
type GeminiSDKClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiSDKClient creates a new Gemini client using the official Google SDK
func NewGeminiSDKClient(cfg *config.Config) (*GeminiSDKClient, error) {
	if cfg == nil || cfg.LLMToken == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.LLMToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiSDKClient{
		client:    client,
		modelName: cfg.LLMModel,
	}, nil
}

// Chat sends a question with an optional system prompt through the Gemini SDK.
func (gc *GeminiSDKClient) Chat(ctx context.Context, system, question string) (string, *Usage, error) {
	if gc.client == nil {
		return "", nil, fmt.Errorf("gemini SDK client not initialized")
	}

	contents := genai.Text(question)

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.7)),
		TopP:            genai.Ptr(float32(0.9)),
		MaxOutputTokens: 2048,
	}
	if system != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := gc.client.Models.GenerateContent(ctx, gc.modelName, contents, genConfig)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate content: %w", err)
	}

	logger.Debug("Gemini SDK Response", map[string]interface{}{
		"candidates_count": len(resp.Candidates),
		"usage_metadata":   resp.UsageMetadata,
	})

	if len(resp.Candidates) == 0 {
		return "", nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", nil, fmt.Errorf("no content parts in Gemini response")
	}

	var content string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			content += part.Text
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", nil, fmt.Errorf("empty answer from Gemini")
	}

	var usage *Usage
	if resp.UsageMetadata != nil {
		usage = &Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return content, usage, nil
}

// Close cleans up the Gemini SDK client resources
func (gc *GeminiSDKClient) Close() error {
	// The SDK client does not require explicit cleanup
	return nil
}
