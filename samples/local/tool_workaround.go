// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/djordjethai/swarm/swarm"
)

// toolCallPattern matches JSON arrays that look like tool calls:
// [{"function_name": {...}}] or [{"fn1": {...}}, {"fn2": {...}}]
// Also matches when wrapped in markdown code fences: ```json ... ```
var toolCallPattern = regexp.MustCompile(`(?s)^\s*(?:` + "`" + `{3}(?:json)?\s*)?\[\s*\{.*\}\s*\](?:\s*` + "`" + `{3})?\s*$`)

// ToolCallWorkaroundMiddleware detects text responses that contain tool calls
// in JSON format and converts them to proper FunctionCallContent objects.
//
// This is a workaround for local models that don't emit structured tool_calls
// in the wire format.
//
// IMPORTANT: This must be chat middleware (not tool middleware) so the
// conversion happens BEFORE the runner inspects the response for calls to
// dispatch.
func ToolCallWorkaroundMiddleware(logger *slog.Logger) swarm.ChatMiddleware {
	return func(next swarm.ChatHandler) swarm.ChatHandler {
		return func(ctx context.Context, messages []swarm.Message, opts *swarm.ChatOptions) (*swarm.ChatResponse, error) {
			resp, err := next(ctx, messages, opts)
			if err != nil || resp == nil {
				return resp, err
			}

			for i := range resp.Messages {
				msg := &resp.Messages[i]
				if msg.Role != swarm.RoleAssistant {
					continue
				}

				// Only rewrite messages that are purely text; structured
				// calls pass through untouched.
				if !hasOnlyTextContent(msg) {
					continue
				}

				text := extractText(msg)
				if text == "" {
					continue
				}

				if !toolCallPattern.MatchString(text) {
					continue
				}

				logger.Debug("detected potential tool call in text",
					"text", text)

				toolCalls, err := parseToolCalls(text)
				if err != nil {
					logger.Debug("failed to parse tool calls",
						"error", err)
					continue
				}

				if len(toolCalls) == 0 {
					continue
				}

				logger.Info("converted text to tool calls",
					"count", len(toolCalls))

				msg.Contents = make(swarm.Contents, len(toolCalls))
				for j, tc := range toolCalls {
					msg.Contents[j] = tc
				}

				resp.FinishReason = swarm.FinishReasonToolCalls
			}

			return resp, nil
		}
	}
}

// hasOnlyTextContent checks if a message contains only text content.
func hasOnlyTextContent(msg *swarm.Message) bool {
	if len(msg.Contents) == 0 {
		return false
	}
	for _, c := range msg.Contents {
		if _, ok := c.(*swarm.TextContent); !ok {
			return false
		}
	}
	return true
}

// extractText extracts all text from a message's text contents.
func extractText(msg *swarm.Message) string {
	var parts []string
	for _, c := range msg.Contents {
		if tc, ok := c.(*swarm.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// parseToolCalls attempts to parse text as a JSON array of tool calls.
// Expected format: [{"function_name": {"arg": "value"}}, ...]
// Handles markdown code fences: ```json ... ```
func parseToolCalls(text string) ([]*swarm.FunctionCallContent, error) {
	// Strip markdown code fences if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Parse as array of objects
	var arr []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &arr); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	var result []*swarm.FunctionCallContent
	for i, obj := range arr {
		// Each object should have exactly one key (the function name)
		if len(obj) != 1 {
			return nil, fmt.Errorf("tool call %d: expected 1 key, got %d", i, len(obj))
		}

		for funcName, argsRaw := range obj {
			// Synthetic correlation ID; the model never produced one.
			callID := fmt.Sprintf("call_local_%d", i)

			argsCompact, err := json.Marshal(json.RawMessage(argsRaw))
			if err != nil {
				return nil, fmt.Errorf("tool call %d (%s): invalid args: %w", i, funcName, err)
			}

			result = append(result, &swarm.FunctionCallContent{
				CallID:    callID,
				Name:      funcName,
				Arguments: string(argsCompact),
			})
		}
	}

	return result, nil
}
