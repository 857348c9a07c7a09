package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Canned replies used whenever the model cannot answer. The storefront never
// surfaces assistant failures; it serves one of these instead.
const (
	FallbackDescription = "AI description unavailable at this time."
	NoDescription       = "No description generated."
	FallbackAdvice      = "Our AI assistant is resting. Please try again later."
	DefaultAdvice       = "I'm not sure, but I recommend checking our bestsellers!"
)

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client calls the text generation backend for product descriptions and
// shopping advice.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a new assistant client.
func NewClient(http HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ProductDescription generates marketing copy for a product. It never
// returns an error; failures degrade to a canned line.
func (c *Client) ProductDescription(ctx context.Context, name string, features []string) string {
	prompt := fmt.Sprintf(
		"Generate a compelling, SEO-friendly e-commerce product description for a shoe named %q. Key features: %s. Target audience: Quality-conscious fashionistas in Bangladesh.",
		name, strings.Join(features, ", "),
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.WarnContext(ctx, "description generation failed, serving fallback",
			slog.String("product_name", name),
			slog.String("error", err.Error()),
		)
		return FallbackDescription
	}
	if text == "" {
		return NoDescription
	}
	return text
}

// ShoppingAdvice answers a free-form shopper question against the supplied
// catalog context. It never returns an error; failures degrade to a canned
// line and an empty model answer gets the stock recommendation.
func (c *Client) ShoppingAdvice(ctx context.Context, question, catalogContext string) string {
	prompt := fmt.Sprintf(
		"You are an expert fashion consultant for an e-commerce store. Answer the following customer question: %q. Here is our current catalog context: %s. Provide a helpful, concise recommendation.",
		question, catalogContext,
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.WarnContext(ctx, "advice generation failed, serving fallback",
			slog.String("error", err.Error()),
		)
		return FallbackAdvice
	}
	if text == "" {
		return DefaultAdvice
	}
	return text
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call assistant backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant backend returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	return strings.TrimSpace(genResp.Text), nil
}
