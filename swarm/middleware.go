// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"encoding/json"
)

// TurnHandler is the function signature for driving one full turn.
type TurnHandler func(ctx context.Context, req *TurnRequest) (*TurnResult, error)

// TurnRequest carries the inputs for a turn through the middleware pipeline.
type TurnRequest struct {
	Agent   *Agent
	History []Message
}

// TurnMiddleware wraps a [TurnHandler] to add cross-cutting behavior.
// Middleware should call next to continue the chain, or return early to
// short-circuit.
type TurnMiddleware func(next TurnHandler) TurnHandler

// ChatHandler is the function signature for one completion-endpoint call.
type ChatHandler func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

// ChatMiddleware wraps a [ChatHandler] to add cross-cutting behavior.
type ChatMiddleware func(next ChatHandler) ChatHandler

// ToolHandler is the function signature for invoking a dispatched tool.
type ToolHandler func(ctx context.Context, req *ToolRequest) (any, error)

// ToolRequest carries one tool invocation through the middleware pipeline.
type ToolRequest struct {
	// Agent is the agent active when the call was dispatched.
	Agent *Agent
	// Tool is the resolved registry entry.
	Tool Tool
	// CallID is the provider-assigned correlation token.
	CallID string
	// Arguments is the decoded-valid JSON argument object.
	Arguments json.RawMessage
}

// ToolMiddleware wraps a [ToolHandler] to add cross-cutting behavior.
type ToolMiddleware func(next ToolHandler) ToolHandler

// chainTurnMiddleware applies middleware in order (first in list = outermost wrapper).
func chainTurnMiddleware(handler TurnHandler, mws ...TurnMiddleware) TurnHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// chainChatMiddleware applies middleware in order (first in list = outermost wrapper).
func chainChatMiddleware(handler ChatHandler, mws ...ChatMiddleware) ChatHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// chainToolMiddleware applies middleware in order.
func chainToolMiddleware(handler ToolHandler, mws ...ToolMiddleware) ToolHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
