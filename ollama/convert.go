// Copyright (c) Microsoft. All rights reserved.

package ollama

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"

	"github.com/djordjethai/swarm/swarm"
)

// buildRequest converts runtime types into an Ollama chat request.
func buildRequest(messages []swarm.Message, opts *swarm.ChatOptions, defaultModel string) (*api.ChatRequest, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    defaultModel,
		Messages: convertMessages(messages),
		Stream:   &stream,
	}

	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}

		tools, err := convertTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		req.Tools = tools

		// Sampling parameters travel in the options map.
		options := map[string]any{}
		if opts.Temperature != nil {
			options["temperature"] = *opts.Temperature
		}
		if opts.TopP != nil {
			options["top_p"] = *opts.TopP
		}
		if opts.MaxTokens != nil {
			options["num_predict"] = *opts.MaxTokens
		}
		if opts.Seed != nil {
			options["seed"] = *opts.Seed
		}
		if opts.FrequencyPenalty != nil {
			options["frequency_penalty"] = *opts.FrequencyPenalty
		}
		if opts.PresencePenalty != nil {
			options["presence_penalty"] = *opts.PresencePenalty
		}
		if len(opts.Stop) > 0 {
			options["stop"] = opts.Stop
		}
		for k, v := range opts.Extra {
			options[k] = v
		}
		if len(options) > 0 {
			req.Options = options
		}
	}

	return req, nil
}

// convertMessages translates runtime Messages into Ollama chat messages.
// Tool results are matched by function name, not by call ID.
func convertMessages(messages []swarm.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))

	for i := range messages {
		msg := &messages[i]

		switch msg.Role {
		case swarm.RoleTool:
			for _, c := range msg.Contents {
				if fr, ok := c.(*swarm.FunctionResultContent); ok {
					out = append(out, api.Message{
						Role:     "tool",
						Content:  fr.Result,
						ToolName: fr.Name,
					})
				}
			}

		case swarm.RoleAssistant:
			am := api.Message{Role: "assistant", Content: msg.Text()}
			for _, call := range msg.ToolCalls() {
				args := api.ToolCallFunctionArguments{}
				if call.Arguments != "" {
					_ = json.Unmarshal([]byte(call.Arguments), &args)
				}
				am.ToolCalls = append(am.ToolCalls, api.ToolCall{
					Function: api.ToolCallFunction{
						Name:      call.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, am)

		default:
			out = append(out, api.Message{
				Role:    string(msg.Role),
				Content: msg.Text(),
			})
		}
	}

	return out
}

// convertTools renders call schemas as Ollama tool declarations by
// round-tripping the canonical parameters JSON into the api types.
func convertTools(schemas []swarm.CallSchema) (api.Tools, error) {
	if len(schemas) == 0 {
		return nil, nil
	}
	out := make(api.Tools, 0, len(schemas))
	for i := range schemas {
		s := &schemas[i]
		tool := api.Tool{Type: "function"}
		tool.Function.Name = s.Name
		tool.Function.Description = s.Description
		if err := json.Unmarshal(s.ParametersJSON(), &tool.Function.Parameters); err != nil {
			return nil, fmt.Errorf("%w: render tool %q parameters: %v", swarm.ErrInvalidRequest, s.Name, err)
		}
		out = append(out, tool)
	}
	return out, nil
}

// parseResponse converts an Ollama chat response into runtime types.
// The wire carries no call IDs, so each tool call gets a synthesized one.
func parseResponse(resp *api.ChatResponse) *swarm.ChatResponse {
	msg := swarm.Message{Role: swarm.RoleAssistant}

	if resp.Message.Content != "" {
		msg.Contents = append(msg.Contents, &swarm.TextContent{Text: resp.Message.Content})
	}
	for _, tc := range resp.Message.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		msg.Contents = append(msg.Contents, &swarm.FunctionCallContent{
			CallID:    "call_" + uuid.NewString(),
			Name:      tc.Function.Name,
			Arguments: string(args),
		})
	}

	finish := mapDoneReason(resp.DoneReason)
	if len(resp.Message.ToolCalls) > 0 {
		finish = swarm.FinishReasonToolCalls
	}

	in, out := resp.PromptEvalCount, resp.EvalCount
	return &swarm.ChatResponse{
		Messages:     []swarm.Message{msg},
		ModelID:      resp.Model,
		FinishReason: finish,
		Usage: swarm.UsageDetails{
			InputTokens:  in,
			OutputTokens: out,
			TotalTokens:  in + out,
		},
	}
}

func mapDoneReason(reason string) swarm.FinishReason {
	switch reason {
	case "", "stop":
		return swarm.FinishReasonStop
	case "length":
		return swarm.FinishReasonLength
	default:
		return swarm.FinishReason(reason)
	}
}

// mapError converts client errors into the runtime's error vocabulary.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.ErrorMessage
		if msg == "" {
			msg = statusErr.Status
		}
		svcErr := &swarm.ServiceError{
			StatusCode: statusErr.StatusCode,
			Message:    msg,
		}
		switch statusErr.StatusCode {
		case 401, 403:
			svcErr.Err = swarm.ErrAuth
		case 400, 404:
			svcErr.Err = swarm.ErrInvalidRequest
		default:
			svcErr.Err = swarm.ErrService
		}
		return svcErr
	}
	return fmt.Errorf("%w: %v", swarm.ErrService, err)
}
