// Copyright (c) Microsoft. All rights reserved.

package swarm

import "context"

// ChatClient is the completion endpoint: it receives the active agent's
// instructions and history plus the advertised tool schemas, and returns one
// assistant message that may carry tool-call requests. Provider packages
// (openai, anthropic, ollama, gemini) implement it.
type ChatClient interface {
	// Response sends messages to the model and returns a complete response.
	Response(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)
}

// StreamingChatClient is implemented by providers that can stream
// incremental updates. The runner falls back to [ChatClient.Response] when a
// client does not support streaming.
type StreamingChatClient interface {
	ChatClient

	// StreamResponse sends messages and returns a stream of incremental updates.
	StreamResponse(ctx context.Context, messages []Message, opts *ChatOptions) (*ResponseStream[ChatResponseUpdate], error)
}
