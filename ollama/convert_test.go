// Copyright (c) Microsoft. All rights reserved.

package ollama

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ollama/ollama/api"

	"github.com/djordjethai/swarm/swarm"
)

func apiChatResponseFromJSON(t *testing.T, raw string) *api.ChatResponse {
	t.Helper()
	var resp api.ChatResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return &resp
}

func TestConvertMessages(t *testing.T) {
	msgs := convertMessages([]swarm.Message{
		swarm.NewSystemMessage("Be brief."),
		swarm.NewUserMessage("weather in Oslo?"),
		{Role: swarm.RoleAssistant, Contents: swarm.Contents{
			&swarm.FunctionCallContent{CallID: "call_1", Name: "get_weather", Arguments: `{"city":"Oslo"}`},
		}},
		swarm.NewToolMessage("call_1", "get_weather", "4°C, sleet"),
	})

	if len(msgs) != 4 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "Be brief." {
		t.Errorf("system = %+v", msgs[0])
	}
	if msgs[1].Role != "user" {
		t.Errorf("user = %+v", msgs[1])
	}

	assistant := msgs[2]
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d", len(assistant.ToolCalls))
	}
	if assistant.ToolCalls[0].Function.Name != "get_weather" {
		t.Errorf("call name = %q", assistant.ToolCalls[0].Function.Name)
	}

	// Ollama correlates results by function name, carried in tool_name.
	tool := msgs[3]
	if tool.Role != "tool" || tool.ToolName != "get_weather" {
		t.Errorf("tool message = %+v", tool)
	}
	if tool.Content != "4°C, sleet" {
		t.Errorf("tool content = %q", tool.Content)
	}
}

func TestConvertTools_RoundTrip(t *testing.T) {
	schema, err := swarm.DeriveSchema[struct {
		City string `json:"city" jsonschema:"description=City name"`
		Unit string `json:"unit" jsonschema:"enum=celsius|fahrenheit,default=celsius"`
	}]("get_weather", "Get the current weather.")
	if err != nil {
		t.Fatal(err)
	}

	tools, err := convertTools([]swarm.CallSchema{*schema})
	if err != nil {
		t.Fatalf("convertTools: %v", err)
	}
	if len(tools) != 1 {
		t.Fatalf("tools = %d", len(tools))
	}

	// Assert through the wire shape rather than the api struct internals.
	b, err := json.Marshal(tools[0])
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "function" {
		t.Errorf("type = %v", m["type"])
	}
	fn := m["function"].(map[string]any)
	if fn["name"] != "get_weather" {
		t.Errorf("name = %v", fn["name"])
	}
	params := fn["parameters"].(map[string]any)
	if params["type"] != "object" {
		t.Errorf("parameters type = %v", params["type"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties = %v", params["properties"])
	}
	if _, ok := props["city"]; !ok {
		t.Error("missing city property")
	}
	required, _ := params["required"].([]any)
	if len(required) != 1 || required[0] != "city" {
		t.Errorf("required = %v", params["required"])
	}
}

func TestParseResponse_SynthesizesCallIDs(t *testing.T) {
	fixture := `{
		"model": "llama3.2",
		"created_at": "2026-01-02T10:00:00Z",
		"message": {
			"role": "assistant",
			"content": "",
			"tool_calls": [
				{"function": {"name": "get_weather", "arguments": {"city": "Oslo"}}},
				{"function": {"name": "get_time", "arguments": {}}}
			]
		},
		"done": true,
		"done_reason": "stop",
		"prompt_eval_count": 9,
		"eval_count": 7
	}`

	resp := parseResponse(apiChatResponseFromJSON(t, fixture))

	calls := resp.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}
	for _, call := range calls {
		if !strings.HasPrefix(call.CallID, "call_") || len(call.CallID) <= len("call_") {
			t.Errorf("CallID = %q, want synthesized id", call.CallID)
		}
	}
	if calls[0].CallID == calls[1].CallID {
		t.Error("call IDs must be unique")
	}
	if calls[0].Name != "get_weather" {
		t.Errorf("name = %q", calls[0].Name)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(calls[0].Arguments), &args); err != nil || args["city"] != "Oslo" {
		t.Errorf("arguments = %q", calls[0].Arguments)
	}

	// Tool calls override the reported done reason.
	if resp.FinishReason != swarm.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.InputTokens != 9 || resp.Usage.OutputTokens != 7 || resp.Usage.TotalTokens != 16 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.ModelID != "llama3.2" {
		t.Errorf("ModelID = %q", resp.ModelID)
	}
}

func TestParseResponse_TextOnly(t *testing.T) {
	resp := parseResponse(apiChatResponseFromJSON(t, `{
		"model": "llama3.2",
		"message": {"role": "assistant", "content": "Sunny."},
		"done": true,
		"done_reason": "stop"
	}`))

	if resp.Text() != "Sunny." {
		t.Errorf("text = %q", resp.Text())
	}
	if resp.FinishReason != swarm.FinishReasonStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if len(resp.ToolCalls()) != 0 {
		t.Errorf("unexpected tool calls")
	}
}
