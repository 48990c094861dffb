// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/djordjethai/swarm/swarm"
)

// defaultAzureAPIVersion is the api-version [NewAzure] uses when the caller
// does not override it with [WithAPIVersion].
const defaultAzureAPIVersion = "2024-10-21"

// Client implements [swarm.ChatClient] using the OpenAI Chat Completions API.
// Use [New] or [NewAzure] to create one.
type Client struct {
	tp      transport
	model   string
	handler swarm.ChatHandler
}

// Verify interface compliance at compile time.
var (
	_ swarm.ChatClient          = (*Client)(nil)
	_ swarm.StreamingChatClient = (*Client)(nil)
)

// New creates an OpenAI [Client] with the given API key and options.
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return newFromConfig(apiKey, cfg)
}

// NewAzure creates a [Client] for an Azure OpenAI deployment. The endpoint is
// the deployment's OpenAI-compatible base URL; authentication uses the api-key
// header when apiKey is non-empty, otherwise supply [WithAzureCredential] for
// Entra ID tokens. The api-version query parameter defaults to a recent GA
// version and can be overridden with [WithAPIVersion].
//
//	client := openai.NewAzure(endpoint, os.Getenv("AZURE_OPENAI_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
func NewAzure(endpoint, apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{
		baseURL:    strings.TrimRight(endpoint, "/"),
		apiVersion: defaultAzureAPIVersion,
	}
	for _, o := range opts {
		o(cfg)
	}
	if apiKey != "" {
		// Azure uses the api-key header instead of a Bearer token. Merge
		// rather than overwrite so caller-supplied headers survive.
		headers := map[string]string{"api-key": apiKey}
		for k, v := range cfg.headers {
			headers[k] = v
		}
		cfg.headers = headers
	}
	return newFromConfig(apiKey, cfg)
}

func newFromConfig(apiKey string, cfg *clientConfig) *Client {
	c := &Client{
		tp:    newHTTPTransport(apiKey, cfg),
		model: cfg.model,
	}
	// Set up core handler
	c.handler = c.coreResponse
	// Apply middleware in order
	for i := len(cfg.chatMiddleware) - 1; i >= 0; i-- {
		c.handler = cfg.chatMiddleware[i](c.handler)
	}
	return c
}

// newWithTransport creates a Client with a custom transport (for testing).
func newWithTransport(tp transport, model string) *Client {
	c := &Client{tp: tp, model: model}
	c.handler = c.coreResponse
	return c
}

// Response sends a non-streaming chat completion request and returns the
// complete response.
func (c *Client) Response(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

// coreResponse is the base implementation called by the middleware chain.
func (c *Client) coreResponse(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ChatResponse, error) {
	req := buildRequest(messages, opts, c.model)
	req.Stream = false

	resp, err := c.tp.do(ctx, "POST", "/chat/completions", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", swarm.ErrService, err)
	}

	raw, err := unmarshalChatResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", swarm.ErrService, err)
	}

	return parseChatResponse(raw), nil
}

// StreamResponse sends a streaming chat completion request and returns
// a [swarm.ResponseStream] that yields incremental updates via server-sent
// events.
func (c *Client) StreamResponse(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ResponseStream[swarm.ChatResponseUpdate], error) {
	req := buildRequest(messages, opts, c.model)
	req.Stream = true
	req.StreamOptions = &streamOptions{IncludeUsage: true}

	resp, err := c.tp.do(ctx, "POST", "/chat/completions", req)
	if err != nil {
		return nil, err
	}

	stream := swarm.NewResponseStream[swarm.ChatResponseUpdate](ctx, func(ctx context.Context, ch chan<- swarm.ChatResponseUpdate) error {
		defer resp.Body.Close()
		return parseSSEStream(ctx, resp.Body, ch)
	})

	return stream, nil
}

// parseSSEStream reads OpenAI server-sent events from r and sends parsed
// updates to ch. It returns when the stream is exhausted ([DONE]),
// the context is cancelled, or an error occurs.
func parseSSEStream(ctx context.Context, r io.Reader, ch chan<- swarm.ChatResponseUpdate) error {
	scanner := bufio.NewScanner(r)
	// Allow large SSE lines (some responses can be substantial).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// SSE format: lines starting with "data: "
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		data = strings.TrimSpace(data)

		// Stream terminator.
		if data == "[DONE]" {
			return nil
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks rather than aborting.
			continue
		}

		update := parseChunk(&chunk)

		select {
		case ch <- *update:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: read SSE stream: %v", swarm.ErrService, err)
	}

	return nil
}
