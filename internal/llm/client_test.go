package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisartix/herder/internal/config"
)

func testConfig(endpoint string) *config.Config {
	return &config.Config{
		LLMProvider: "deepseek",
		LLMEndpoint: endpoint,
		LLMToken:    "test-token",
		LLMModel:    "deepseek-chat",
	}
}

func TestChatSendsSystemPrompt(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "  hi there  "}}},
			Usage:   &Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	answer, usage, err := c.Chat(context.Background(), "be terse", "hello?")
	require.NoError(t, err)
	assert.Equal(t, "hi there", answer)
	require.NotNil(t, usage)
	assert.Equal(t, 15, usage.TotalTokens)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be terse", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestChatOmitsEmptySystemPrompt(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, _, err := c.Chat(context.Background(), "", "hello?")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, _, err := c.Chat(context.Background(), "", "hello?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, _, err := c.Chat(context.Background(), "", "hello?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatUnconfigured(t *testing.T) {
	c := NewClient(&config.Config{})
	assert.False(t, c.Available())
	_, _, err := c.Chat(context.Background(), "", "hello?")
	require.Error(t, err)
}
