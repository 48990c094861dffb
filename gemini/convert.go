// Copyright (c) Microsoft. All rights reserved.

package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"

	"github.com/djordjethai/swarm/swarm"
)

// buildContents splits the history into system-instruction text and Gemini
// content entries. Assistant messages take the "model" role, tool results the
// "function" role; consecutive tool results are coalesced into one function
// content so parallel calls are answered in a single entry.
func buildContents(messages []swarm.Message) (string, []*genai.Content) {
	var system string
	var out []*genai.Content
	var pending []genai.Part

	flushResults := func() {
		if len(pending) > 0 {
			out = append(out, &genai.Content{Role: "function", Parts: pending})
			pending = nil
		}
	}

	for i := range messages {
		msg := &messages[i]

		switch msg.Role {
		case swarm.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Text()

		case swarm.RoleTool:
			for _, c := range msg.Contents {
				if fr, ok := c.(*swarm.FunctionResultContent); ok {
					pending = append(pending, genai.FunctionResponse{
						Name:     fr.Name,
						Response: resultObject(fr.Result),
					})
				}
			}

		case swarm.RoleAssistant:
			flushResults()
			var parts []genai.Part
			for _, c := range msg.Contents {
				switch v := c.(type) {
				case *swarm.TextContent:
					if v.Text != "" {
						parts = append(parts, genai.Text(v.Text))
					}
				case *swarm.FunctionCallContent:
					fc := genai.FunctionCall{Name: v.Name}
					if v.Arguments != "" {
						_ = json.Unmarshal([]byte(v.Arguments), &fc.Args)
					}
					parts = append(parts, fc)
				}
			}
			if len(parts) > 0 {
				out = append(out, &genai.Content{Role: "model", Parts: parts})
			}

		default:
			flushResults()
			if text := msg.Text(); text != "" {
				out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(text)}})
			}
		}
	}
	flushResults()

	return system, out
}

// resultObject shapes a rendered tool result as the response object Gemini
// expects. JSON objects pass through; everything else is wrapped.
func resultObject(result string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(result), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"result": result}
}

// applyOptions maps chat options onto the generative model configuration.
func applyOptions(model *genai.GenerativeModel, opts *swarm.ChatOptions) {
	if opts.Temperature != nil {
		model.SetTemperature(float32(*opts.Temperature))
	}
	if opts.TopP != nil {
		model.SetTopP(float32(*opts.TopP))
	}
	if opts.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*opts.MaxTokens))
	}
	if len(opts.Stop) > 0 {
		model.StopSequences = opts.Stop
	}
	if len(opts.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: convertTools(opts.Tools)}}
	}
	if tc := convertToolChoice(opts.ToolChoice); tc != nil {
		model.ToolConfig = tc
	}
}

// convertTools renders call schemas as Gemini function declarations.
func convertTools(schemas []swarm.CallSchema) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(schemas))
	for i := range schemas {
		s := &schemas[i]
		decl := &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
		}
		// Gemini rejects an object schema with no properties; a tool
		// without parameters simply declares none.
		if len(s.Parameters) > 0 {
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: convertProperties(s.Parameters),
				Required:   s.Required,
			}
		}
		out = append(out, decl)
	}
	return out
}

func convertProperties(props map[string]swarm.Property) map[string]*genai.Schema {
	out := make(map[string]*genai.Schema, len(props))
	for name, p := range props {
		out[name] = convertSchema(p)
	}
	return out
}

// convertSchema maps one parameter description onto a Gemini schema,
// recursing through array items and object properties.
func convertSchema(p swarm.Property) *genai.Schema {
	s := &genai.Schema{
		Type:        mapType(p.Type),
		Description: p.Description,
		Enum:        p.Enum,
	}
	if p.Items != nil {
		s.Items = convertSchema(*p.Items)
	}
	if len(p.Properties) > 0 {
		s.Properties = convertProperties(p.Properties)
		s.Required = p.Required
	}
	return s
}

func mapType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func convertToolChoice(tc swarm.ToolChoice) *genai.ToolConfig {
	switch tc {
	case "", swarm.ToolChoiceAuto:
		return nil
	case swarm.ToolChoiceRequired:
		return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode: genai.FunctionCallingAny,
		}}
	case swarm.ToolChoiceNone:
		return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode: genai.FunctionCallingNone,
		}}
	default:
		if name, ok := strings.CutPrefix(string(tc), "function:"); ok {
			return &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingAny,
				AllowedFunctionNames: []string{name},
			}}
		}
		return nil
	}
}

// parseResponse converts a Gemini response into runtime types. Call IDs are
// synthesized; the wire format has none.
func parseResponse(resp *genai.GenerateContentResponse, modelID string) (*swarm.ChatResponse, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: response contained no candidates", swarm.ErrInvalidResponse)
	}
	cand := resp.Candidates[0]

	msg := swarm.Message{Role: swarm.RoleAssistant}
	toolCalls := 0
	for _, part := range cand.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			if v != "" {
				msg.Contents = append(msg.Contents, &swarm.TextContent{Text: string(v)})
			}
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil || v.Args == nil {
				args = []byte("{}")
			}
			msg.Contents = append(msg.Contents, &swarm.FunctionCallContent{
				CallID:    "call_" + uuid.NewString(),
				Name:      v.Name,
				Arguments: string(args),
			})
			toolCalls++
		}
	}

	finish := mapFinishReason(cand.FinishReason)
	if toolCalls > 0 {
		finish = swarm.FinishReasonToolCalls
	}

	out := &swarm.ChatResponse{
		Messages:     []swarm.Message{msg},
		ModelID:      modelID,
		FinishReason: finish,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = swarm.UsageDetails{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func mapFinishReason(r genai.FinishReason) swarm.FinishReason {
	switch r {
	case genai.FinishReasonStop:
		return swarm.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return swarm.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return swarm.FinishReasonContentFilter
	default:
		return swarm.FinishReasonStop
	}
}

// mapError converts SDK errors into the runtime's error vocabulary.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		svcErr := &swarm.ServiceError{
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
		}
		switch apiErr.Code {
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
