// Copyright (c) Microsoft. All rights reserved.

// Package ollama provides a [swarm.ChatClient] implementation for locally
// hosted models served by Ollama's chat API.
//
//	client, err := ollama.New(ollama.WithModel("llama3.2"))
//
// The host is taken from OLLAMA_HOST (default http://localhost:11434) unless
// overridden with [WithHost]. Ollama's wire format has no tool-call
// correlation IDs, so the client synthesizes them; tool results are sent as
// tool-role messages carrying the function name, which is how Ollama matches
// results to calls.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/ollama/ollama/api"

	"github.com/djordjethai/swarm/swarm"
)

const defaultHost = "http://localhost:11434"

// clientConfig holds resolved configuration for the Ollama client.
type clientConfig struct {
	host       string
	model      string
	httpClient *http.Client
}

// Option configures an Ollama [Client].
type Option func(*clientConfig)

// WithHost overrides the Ollama host instead of reading OLLAMA_HOST.
func WithHost(host string) Option {
	return func(c *clientConfig) { c.host = host }
}

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithHTTPClient provides a custom http.Client, e.g. to set a timeout for
// slow local models.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// Client implements [swarm.ChatClient] against an Ollama server.
// Use [New] to create one.
type Client struct {
	client *api.Client
	model  string
}

var _ swarm.ChatClient = (*Client)(nil)

// New creates an Ollama [Client]. The host comes from [WithHost], the
// OLLAMA_HOST environment variable, or the local default, in that order.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	host := cfg.host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		client: api.NewClient(u, httpClient),
		model:  cfg.model,
	}, nil
}

// Response sends a chat request and returns the complete response. The
// request is non-streaming; Ollama delivers it as a single callback.
func (c *Client) Response(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ChatResponse, error) {
	req, err := buildRequest(messages, opts, c.model)
	if err != nil {
		return nil, err
	}

	var last api.ChatResponse
	if err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		last = resp
		return nil
	}); err != nil {
		return nil, mapError(err)
	}

	return parseResponse(&last), nil
}
