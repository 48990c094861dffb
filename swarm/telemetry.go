// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingTurnMiddleware returns a [TurnMiddleware] that logs whole turns using slog.
func LoggingTurnMiddleware(logger *slog.Logger) TurnMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next TurnHandler) TurnHandler {
		return func(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
			start := time.Now()
			logger.InfoContext(ctx, "turn started",
				"agent", req.Agent.Name,
				"history_count", len(req.History),
			)

			result, err := next(ctx, req)

			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "turn failed",
					"agent", req.Agent.Name,
					"duration", duration,
					"error", err,
				)
				return nil, err
			}

			logger.InfoContext(ctx, "turn completed",
				"agent", result.Agent.Name,
				"duration", duration,
				"new_messages", len(result.Messages),
				"input_tokens", result.Usage.InputTokens,
				"output_tokens", result.Usage.OutputTokens,
			)
			return result, nil
		}
	}
}

// LoggingChatMiddleware returns a [ChatMiddleware] that logs each completion
// call using slog.
func LoggingChatMiddleware(logger *slog.Logger) ChatMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
			start := time.Now()
			resp, err := next(ctx, messages, opts)
			duration := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "completion failed",
					"duration", duration,
					"error", err,
				)
				return nil, err
			}
			logger.DebugContext(ctx, "completion",
				"model", resp.ModelID,
				"duration", duration,
				"finish_reason", resp.FinishReason,
				"total_tokens", resp.Usage.TotalTokens,
			)
			return resp, nil
		}
	}
}

// LoggingToolMiddleware returns a [ToolMiddleware] that logs each dispatched
// tool invocation using slog.
func LoggingToolMiddleware(logger *slog.Logger) ToolMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ToolHandler) ToolHandler {
		return func(ctx context.Context, req *ToolRequest) (any, error) {
			start := time.Now()
			result, err := next(ctx, req)
			duration := time.Since(start)
			if err != nil {
				logger.WarnContext(ctx, "tool failed",
					"agent", req.Agent.Name,
					"tool", req.Tool.Name(),
					"duration", duration,
					"error", err,
				)
				return nil, err
			}
			logger.DebugContext(ctx, "tool invoked",
				"agent", req.Agent.Name,
				"tool", req.Tool.Name(),
				"kind", req.Tool.Kind(),
				"duration", duration,
			)
			return result, nil
		}
	}
}
