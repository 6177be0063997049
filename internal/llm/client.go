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

	"github.com/elisartix/herder/internal/config"
)

type Client struct {
	cfg          *config.Config
	geminiClient *GeminiSDKClient
	httpClient   *http.Client
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func NewClient(cfg *config.Config) *Client {
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}

	if cfg != nil && cfg.HasLLMConfig() && strings.ToLower(cfg.LLMProvider) == "gemini" {
		if geminiClient, err := NewGeminiSDKClient(cfg); err == nil {
			client.geminiClient = geminiClient
		}
		// If the Gemini SDK fails to initialize we fall back to the
		// OpenAI-compatible HTTP path.
	}

	return client
}

// Chat sends a question with an optional system prompt and returns the
// model's reply. An empty system prompt is omitted from the request.
func (c *Client) Chat(ctx context.Context, system, question string) (string, *Usage, error) {
	if c.cfg == nil || !c.cfg.HasLLMConfig() {
		return "", nil, fmt.Errorf("llm is not configured")
	}

	if c.geminiClient != nil {
		return c.geminiClient.Chat(ctx, system, question)
	}

	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: question})

	reqBody := ChatRequest{
		Model:    c.cfg.LLMModel,
		Messages: messages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.LLMEndpoint+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.LLMToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to send request to %s: %w", req.URL.String(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", nil, fmt.Errorf("no choices in LLM response")
	}

	answer := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if answer == "" {
		return "", chatResp.Usage, fmt.Errorf("empty answer from LLM")
	}

	return answer, chatResp.Usage, nil
}

// Available reports whether the client can serve requests.
func (c *Client) Available() bool {
	return c.cfg != nil && c.cfg.HasLLMConfig()
}

// Close cleans up the client resources
func (c *Client) Close() error {
	if c.geminiClient != nil {
		return c.geminiClient.Close()
	}
	return nil
}
