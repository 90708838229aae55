package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. The
// request carries a primary model plus an ordered list of backup models
// the provider may silently fall back to mid-request; that provider-level
// failover is a single attempt, distinct from the retry loop in retry.go.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	siteURL    string
	pool       []string
}

func NewClient(apiKey, baseURL, siteURL string, pool []string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		siteURL:    siteURL,
		pool:       pool,
	}
}

func (c *Client) IsAvailable() bool {
	return c.apiKey != "" && len(c.pool) > 0
}

func (c *Client) Pool() []string {
	return c.pool
}

// RandomizedModels shuffles the pool and designates one primary plus an
// ordered backup list. Randomizing the primary per call spreads load
// across equivalent backends instead of pinning traffic to one.
func (c *Client) RandomizedModels() (string, []string) {
	shuffled := make([]string, len(c.pool))
	copy(shuffled, c.pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[0], shuffled[1:]
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Params struct {
	Messages       []Message
	Temperature    float64
	ResponseFormat string // e.g. "json_object", empty for plain text
	MaxTokens      int
}

type chatRequest struct {
	Model          string          `json:"model"`
	Models         []string        `json:"models,omitempty"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *Client) newRequest(ctx context.Context, primary string, backups []string, p Params, stream bool) (*http.Request, error) {
	body := chatRequest{
		Model:       primary,
		Models:      backups,
		Messages:    p.Messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Stream:      stream,
	}
	if p.ResponseFormat != "" {
		body.ResponseFormat = &responseFormat{Type: p.ResponseFormat}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", "Prompt Playground")
	return req, nil
}

// Complete issues one non-streaming completion request.
func (c *Client) Complete(ctx context.Context, primary string, backups []string, p Params) (string, error) {
	req, err := c.newRequest(ctx, primary, backups, p, false)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model: %s", primary)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// CompleteStream issues one streaming completion request and invokes
// onChunk for every non-empty content delta as it arrives.
func (c *Client) CompleteStream(ctx context.Context, primary string, backups []string, p Params, onChunk func(string) error) error {
	req, err := c.newRequest(ctx, primary, backups, p, true)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Providers occasionally interleave comments or malformed
			// keepalives; skip rather than abort the stream.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			if err := onChunk(content); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return nil
}
