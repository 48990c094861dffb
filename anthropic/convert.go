// Copyright (c) Microsoft. All rights reserved.

package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/djordjethai/swarm/swarm"
)

// buildParams converts runtime types into Messages API parameters.
func buildParams(messages []swarm.Message, opts *swarm.ChatOptions, model string, maxTokens int) sdk.MessageNewParams {
	system, history := convertMessages(messages)

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  history,
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	if opts != nil {
		if opts.ModelID != "" {
			params.Model = sdk.Model(opts.ModelID)
		}
		if opts.MaxTokens != nil {
			params.MaxTokens = int64(*opts.MaxTokens)
		}
		if opts.Temperature != nil {
			params.Temperature = sdk.Float(*opts.Temperature)
		}
		if opts.TopP != nil {
			params.TopP = sdk.Float(*opts.TopP)
		}
		if len(opts.Stop) > 0 {
			params.StopSequences = opts.Stop
		}
		params.Tools = convertTools(opts.Tools)
		if tc := convertToolChoice(opts.ToolChoice); tc != nil {
			params.ToolChoice = *tc
		}
	}

	return params
}

// convertMessages splits the history into the system parameter and the
// Messages API message list. System-role text is concatenated into the
// former; tool results become tool_result blocks in user messages, with
// consecutive results coalesced into one message because the API requires
// every tool_use of an assistant turn to be answered by the directly
// following user message.
func convertMessages(messages []swarm.Message) (string, []sdk.MessageParam) {
	var system strings.Builder
	var out []sdk.MessageParam
	var pendingResults []sdk.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) > 0 {
			out = append(out, sdk.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for i := range messages {
		msg := &messages[i]

		switch msg.Role {
		case swarm.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Text())

		case swarm.RoleTool:
			for _, c := range msg.Contents {
				if fr, ok := c.(*swarm.FunctionResultContent); ok {
					pendingResults = append(pendingResults, sdk.NewToolResultBlock(fr.CallID, fr.Result, false))
				}
			}

		case swarm.RoleAssistant:
			flushResults()
			var blocks []sdk.ContentBlockParamUnion
			for _, c := range msg.Contents {
				switch v := c.(type) {
				case *swarm.TextContent:
					if v.Text != "" {
						blocks = append(blocks, sdk.NewTextBlock(v.Text))
					}
				case *swarm.FunctionCallContent:
					args := v.Arguments
					if args == "" {
						args = "{}"
					}
					blocks = append(blocks, sdk.NewToolUseBlock(v.CallID, json.RawMessage(args), v.Name))
				}
			}
			if len(blocks) > 0 {
				out = append(out, sdk.NewAssistantMessage(blocks...))
			}

		default:
			flushResults()
			if text := msg.Text(); text != "" {
				out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(text)))
			}
		}
	}
	flushResults()

	return system.String(), out
}

// convertTools renders call schemas as Messages API tool declarations.
func convertTools(schemas []swarm.CallSchema) []sdk.ToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}
	out := make([]sdk.ToolUnionParam, 0, len(schemas))
	for i := range schemas {
		s := &schemas[i]
		tool := sdk.ToolParam{
			Name: s.Name,
			InputSchema: sdk.ToolInputSchemaParam{
				Type:       "object",
				Properties: s.Parameters,
				Required:   s.Required,
			},
		}
		if s.Description != "" {
			tool.Description = sdk.String(s.Description)
		}
		out = append(out, sdk.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func convertToolChoice(tc swarm.ToolChoice) *sdk.ToolChoiceUnionParam {
	switch tc {
	case "", swarm.ToolChoiceAuto:
		return nil
	case swarm.ToolChoiceRequired:
		return &sdk.ToolChoiceUnionParam{OfAny: &sdk.ToolChoiceAnyParam{}}
	case swarm.ToolChoiceNone:
		return &sdk.ToolChoiceUnionParam{OfNone: &sdk.ToolChoiceNoneParam{}}
	default:
		if name, ok := strings.CutPrefix(string(tc), "function:"); ok {
			return &sdk.ToolChoiceUnionParam{OfTool: &sdk.ToolChoiceToolParam{Name: name}}
		}
		return nil
	}
}

// parseResponse converts a Messages API response into runtime types.
func parseResponse(msg *sdk.Message) *swarm.ChatResponse {
	out := swarm.Message{Role: swarm.RoleAssistant}

	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case sdk.TextBlock:
			out.Contents = append(out.Contents, &swarm.TextContent{Text: v.Text})
		case sdk.ToolUseBlock:
			out.Contents = append(out.Contents, &swarm.FunctionCallContent{
				CallID:    v.ID,
				Name:      v.Name,
				Arguments: string(v.Input),
			})
		}
	}

	in, outTok := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &swarm.ChatResponse{
		Messages:     []swarm.Message{out},
		ResponseID:   msg.ID,
		ModelID:      string(msg.Model),
		FinishReason: mapStopReason(msg.StopReason),
		Usage: swarm.UsageDetails{
			InputTokens:  in,
			OutputTokens: outTok,
			TotalTokens:  in + outTok,
		},
	}
}

func mapStopReason(r sdk.StopReason) swarm.FinishReason {
	switch r {
	case sdk.StopReasonEndTurn, sdk.StopReasonStopSequence:
		return swarm.FinishReasonStop
	case sdk.StopReasonMaxTokens:
		return swarm.FinishReasonLength
	case sdk.StopReasonToolUse:
		return swarm.FinishReasonToolCalls
	default:
		return swarm.FinishReason(r)
	}
}

// mapError converts SDK errors into the runtime's error vocabulary.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		svcErr := &swarm.ServiceError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
		}
		switch apiErr.StatusCode {
		case 401, 403:
			svcErr.Err = swarm.ErrAuth
		case 400:
			svcErr.Err = swarm.ErrInvalidRequest
		default:
			svcErr.Err = swarm.ErrService
		}
		return svcErr
	}
	return fmt.Errorf("%w: %v", swarm.ErrService, err)
}
