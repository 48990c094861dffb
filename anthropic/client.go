// Copyright (c) Microsoft. All rights reserved.

// Package anthropic provides a [swarm.ChatClient] implementation for the
// Anthropic Messages API, built on the official anthropic-sdk-go client.
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel("claude-sonnet-4-5"),
//	)
//
// System-role messages are lifted into the API's system parameter, tool calls
// and results travel as tool_use/tool_result blocks, and stop reasons map onto
// the standard [swarm.FinishReason] values. The Messages API requires a
// max-tokens value on every request; it defaults to 1024 and can be raised
// with [WithMaxTokens] or per call through ChatOptions.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/djordjethai/swarm/swarm"
)

// defaultMaxTokens is the max_tokens sent when neither the client nor the
// per-call options specify one. The Messages API rejects requests without it.
const defaultMaxTokens = 1024

// clientConfig holds resolved configuration for the Anthropic client.
type clientConfig struct {
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
}

// Option configures an Anthropic [Client].
type Option func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithMaxTokens sets the default max_tokens for requests.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) { c.maxTokens = n }
}

// WithBaseURL overrides the API base URL (e.g., for proxies).
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// Client implements [swarm.ChatClient] using the Anthropic Messages API.
// Use [New] to create one.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int
}

// Verify interface compliance at compile time.
var (
	_ swarm.ChatClient          = (*Client)(nil)
	_ swarm.StreamingChatClient = (*Client)(nil)
)

// New creates an Anthropic [Client] with the given API key and options.
// When apiKey is empty the SDK falls back to the ANTHROPIC_API_KEY
// environment variable.
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{maxTokens: defaultMaxTokens}
	for _, o := range opts {
		o(cfg)
	}

	var reqOpts []option.RequestOption
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}

	return &Client{
		client:    sdk.NewClient(reqOpts...),
		model:     cfg.model,
		maxTokens: cfg.maxTokens,
	}
}

// Response sends a non-streaming request and returns the complete response.
func (c *Client) Response(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ChatResponse, error) {
	params := buildParams(messages, opts, c.model, c.maxTokens)

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}

	return parseResponse(msg), nil
}

// StreamResponse sends a streaming request and returns a
// [swarm.ResponseStream] of incremental updates. Tool-use blocks arrive as a
// call header followed by bare argument fragments, which
// [swarm.ChatResponseFromUpdates] stitches back together.
func (c *Client) StreamResponse(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ResponseStream[swarm.ChatResponseUpdate], error) {
	params := buildParams(messages, opts, c.model, c.maxTokens)
	stream := c.client.Messages.NewStreaming(ctx, params)

	rs := swarm.NewResponseStream[swarm.ChatResponseUpdate](ctx, func(ctx context.Context, ch chan<- swarm.ChatResponseUpdate) error {
		defer stream.Close()

		emit := func(u swarm.ChatResponseUpdate) error {
			select {
			case ch <- u:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var msg sdk.Message
		for stream.Next() {
			event := stream.Current()
			if err := msg.Accumulate(event); err != nil {
				return fmt.Errorf("%w: accumulate stream event: %v", swarm.ErrService, err)
			}

			switch v := event.AsAny().(type) {
			case sdk.ContentBlockStartEvent:
				if v.ContentBlock.Type != "tool_use" {
					continue
				}
				call := &swarm.FunctionCallContent{
					CallID: v.ContentBlock.ID,
					Name:   v.ContentBlock.Name,
				}
				// Some responses carry the full input on the start block
				// instead of streaming it as deltas.
				if b, err := json.Marshal(v.ContentBlock.Input); err == nil {
					if s := string(b); s != "" && s != "null" && s != "{}" {
						call.Arguments = s
					}
				}
				if err := emit(swarm.ChatResponseUpdate{
					Role:     swarm.RoleAssistant,
					Contents: swarm.Contents{call},
				}); err != nil {
					return err
				}

			case sdk.ContentBlockDeltaEvent:
				switch d := v.Delta.AsAny().(type) {
				case sdk.TextDelta:
					if d.Text == "" {
						continue
					}
					if err := emit(swarm.ChatResponseUpdate{
						Role:     swarm.RoleAssistant,
						Contents: swarm.Contents{&swarm.TextContent{Text: d.Text}},
					}); err != nil {
						return err
					}
				case sdk.InputJSONDelta:
					if d.PartialJSON == "" {
						continue
					}
					// No id or name marks this as a continuation of the
					// preceding call's arguments.
					if err := emit(swarm.ChatResponseUpdate{
						Role:     swarm.RoleAssistant,
						Contents: swarm.Contents{&swarm.FunctionCallContent{Arguments: d.PartialJSON}},
					}); err != nil {
						return err
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return mapError(err)
		}

		in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
		return emit(swarm.ChatResponseUpdate{
			ResponseID:   msg.ID,
			ModelID:      string(msg.Model),
			FinishReason: mapStopReason(msg.StopReason),
			Usage:        swarm.UsageDetails{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
		})
	})

	return rs, nil
}
