// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"

	"github.com/djordjethai/swarm/swarm"
)

// chatRequest is the OpenAI Chat Completions API request body.
type chatRequest struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	Temperature      *float64       `json:"temperature,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	MaxTokens        *int           `json:"max_completion_tokens,omitempty"`
	Stop             []string       `json:"stop,omitempty"`
	Seed             *int           `json:"seed,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
	Tools            []toolSpec     `json:"tools,omitempty"`
	ToolChoice       any            `json:"tool_choice,omitempty"`
	User             string         `json:"user,omitempty"`
	Stream           bool           `json:"stream,omitempty"`
	StreamOptions    *streamOptions `json:"stream_options,omitempty"`

	// Extra entries are merged into the top-level request object, letting
	// callers reach fields this struct does not model (response_format,
	// store, parallel_tool_calls, ...).
	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the serialized request. Extra keys override
// struct fields of the same name.
func (r chatRequest) MarshalJSON() ([]byte, error) {
	type plain chatRequest
	b, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return b, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		m[k] = v
	}
	return json.Marshal(m)
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    any        `json:"content,omitempty"` // string for all supported content
	Name       string     `json:"name,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// buildRequest converts runtime types into an OpenAI API request.
func buildRequest(messages []swarm.Message, opts *swarm.ChatOptions, defaultModel string) *chatRequest {
	req := &chatRequest{
		Model: defaultModel,
	}
	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		req.Temperature = opts.Temperature
		req.TopP = opts.TopP
		req.MaxTokens = opts.MaxTokens
		req.Stop = opts.Stop
		req.Seed = opts.Seed
		req.FrequencyPenalty = opts.FrequencyPenalty
		req.PresencePenalty = opts.PresencePenalty
		req.User = opts.User
		req.Extra = opts.Extra

		// Convert tool schemas
		for _, t := range opts.Tools {
			req.Tools = append(req.Tools, toolSpec{
				Type: "function",
				Function: functionSpec{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.ParametersJSON(),
				},
			})
		}

		// Convert tool choice
		req.ToolChoice = convertToolChoice(opts.ToolChoice)
	}

	req.Messages = convertMessages(messages)
	return req
}

// convertMessages translates runtime Messages into OpenAI chat messages.
func convertMessages(messages []swarm.Message) []chatMessage {
	result := make([]chatMessage, 0, len(messages))

	for _, msg := range messages {
		cm := chatMessage{
			Role: string(msg.Role),
			Name: msg.AuthorName,
		}

		switch msg.Role {
		case swarm.RoleTool:
			// Tool messages carry a single function result
			for _, c := range msg.Contents {
				if fr, ok := c.(*swarm.FunctionResultContent); ok {
					cm.ToolCallID = fr.CallID
					cm.Content = fr.Result
				}
			}

		case swarm.RoleAssistant:
			// Assistant messages may have text + tool calls
			for _, c := range msg.Contents {
				if fc, ok := c.(*swarm.FunctionCallContent); ok {
					cm.ToolCalls = append(cm.ToolCalls, toolCall{
						ID:   fc.CallID,
						Type: "function",
						Function: functionCall{
							Name:      fc.Name,
							Arguments: fc.Arguments,
						},
					})
				}
			}
			if text := msg.Text(); text != "" {
				cm.Content = text
			}

		default:
			// User/system messages: plain text
			if len(msg.Contents) > 0 {
				cm.Content = msg.Text()
			}
		}

		result = append(result, cm)
	}

	return result
}

func convertToolChoice(tc swarm.ToolChoice) any {
	if tc == "" {
		return nil
	}
	switch tc {
	case swarm.ToolChoiceAuto:
		return "auto"
	case swarm.ToolChoiceRequired:
		return "required"
	case swarm.ToolChoiceNone:
		return "none"
	default:
		// Check for function: prefix
		s := string(tc)
		if len(s) > 9 && s[:9] == "function:" {
			return map[string]any{
				"type": "function",
				"function": map[string]string{
					"name": s[9:],
				},
			}
		}
		return string(tc)
	}
}
