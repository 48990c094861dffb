// Copyright (c) Microsoft. All rights reserved.

// Package gemini provides a [swarm.ChatClient] implementation for Google's
// Gemini API, built on the official generative-ai-go SDK.
//
//	client, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"),
//	    gemini.WithModel("gemini-2.0-flash"),
//	)
//	defer client.Close()
//
// When the key argument is empty the client falls back to the GEMINI_API_KEY
// and GOOGLE_API_KEY environment variables. Gemini correlates tool results by
// function name rather than call ID, and its wire format carries no IDs at
// all, so the client synthesizes correlation IDs for tool calls.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/djordjethai/swarm/swarm"
)

// clientConfig holds resolved configuration for the Gemini client.
type clientConfig struct {
	model      string
	clientOpts []option.ClientOption
}

// Option configures a Gemini [Client].
type Option func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithClientOptions passes additional options to the underlying Google API
// client (custom endpoint, credentials, HTTP client).
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *clientConfig) { c.clientOpts = append(c.clientOpts, opts...) }
}

// Client implements [swarm.ChatClient] using the Gemini API.
// Use [New] to create one and Close it when done.
type Client struct {
	client *genai.Client
	model  string
}

var _ swarm.ChatClient = (*Client)(nil)

// New creates a Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini: missing API key (set GEMINI_API_KEY or GOOGLE_API_KEY)")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, cfg.clientOpts...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{client: client, model: cfg.model}, nil
}

// Close releases the underlying API client's resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Response sends a chat request and returns the complete response.
func (c *Client) Response(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ChatResponse, error) {
	modelID := c.model
	if opts != nil && opts.ModelID != "" {
		modelID = opts.ModelID
	}
	model := c.client.GenerativeModel(modelID)

	system, contents := buildContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: no sendable messages", swarm.ErrInvalidRequest)
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	if opts != nil {
		applyOptions(model, opts)
	}

	// The chat session takes everything before the final message as
	// history; the final message's parts form the prompt.
	last := contents[len(contents)-1]
	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, mapError(err)
	}

	return parseResponse(resp, modelID)
}
