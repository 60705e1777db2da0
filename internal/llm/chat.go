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

	"honeypot-lab/internal/config"
	"honeypot-lab/pkg/logger"
)

// Provider selects the chat-completions backend
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
)

// ChatClient is the single concrete adapter behind both the Classifier and
// ReplyGenerator interfaces. Both OpenRouter and a local Ollama daemon
// expose the same OpenAI-style chat-completions API, so the provider is
// nothing more than a base URL and an optional bearer token; the core
// never learns which transport backs it.
type ChatClient struct {
	client      *http.Client
	provider    Provider
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	logger      *logger.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewChatClient creates the adapter from configuration
func NewChatClient(cfg config.LLMConfig, log *logger.Logger) *ChatClient {
	provider := Provider(cfg.Provider)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch provider {
		case ProviderOllama:
			baseURL = "http://localhost:11434/v1"
		default:
			baseURL = "https://openrouter.ai/api/v1"
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 40 * time.Second
	}

	return &ChatClient{
		client:      &http.Client{Timeout: timeout},
		provider:    provider,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      log.WithComponent("llm"),
	}
}

const classifyPrompt = `You are a financial fraud detection expert analyzing text messages.

Classify the following message as one of:
- Scam (fraudulent attempt to steal money/data)
- Legitimate (genuine communication)
- Uncertain (not enough information)

Consider these scam indicators:
- Urgency tactics ("immediate action required")
- Authority impersonation (bank, police, tax dept)
- Request for sensitive info (OTP, password, CVV, UPI ID)
- Threats (account blocked, legal action)
- Too-good-to-be-true offers (lottery, refund, prize)
- Suspicious links or app installations
- Remote access requests (AnyDesk, TeamViewer)

Respond STRICTLY in this JSON format (no other text):
{"label": "Scam|Legitimate|Uncertain", "confidence": 0.85, "reason": "Brief explanation"}`

// Classify asks the model for a fraud verdict on text. Transport failures
// and unparseable output both degrade to an Uncertain classification; the
// returned error exists only so callers can log the underlying cause.
func (c *ChatClient) Classify(ctx context.Context, text string) (Classification, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return Uncertain("classifier call failed"), err
	}

	var result Classification
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		c.logger.Warn().Str("output", truncateForLog(content)).Msg("classifier returned unparseable output")
		return Uncertain("classifier output parsing failed"), nil
	}

	switch result.Label {
	case LabelScam, LabelLegitimate, LabelUncertain:
	default:
		return Uncertain("classifier returned unknown label"), nil
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return Uncertain("classifier confidence out of range"), nil
	}

	return result, nil
}

// Generate produces the agent persona's reply for an assembled prompt.
// Output is sanitized before being returned.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a real human scam victim. Be confused, cooperative, and natural."},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   80,
	})
	if err != nil {
		return "", err
	}
	return CleanReply(content), nil
}

func (c *ChatClient) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	// Providers are untrusted; cap the response size
	const maxResponseSize = 2 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm API error %d: %s", resp.StatusCode, truncateForLog(string(body)))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("llm response unmarshal: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// extractJSON locates the outermost JSON object in model output, which
// often arrives wrapped in prose or markdown fences
func extractJSON(content string) string {
	clean := strings.TrimSpace(content)
	if start := strings.Index(clean, "{"); start != -1 {
		clean = clean[start:]
	}
	if end := strings.LastIndex(clean, "}"); end != -1 {
		clean = clean[:end+1]
	}
	return clean
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
