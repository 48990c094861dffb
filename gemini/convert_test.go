// Copyright (c) Microsoft. All rights reserved.

package gemini

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/djordjethai/swarm/swarm"
)

func TestBuildContents(t *testing.T) {
	system, contents := buildContents([]swarm.Message{
		swarm.NewSystemMessage("Be brief."),
		swarm.NewUserMessage("weather in Oslo?"),
		{Role: swarm.RoleAssistant, Contents: swarm.Contents{
			&swarm.FunctionCallContent{CallID: "call_1", Name: "get_weather", Arguments: `{"city":"Oslo"}`},
			&swarm.FunctionCallContent{CallID: "call_2", Name: "get_time", Arguments: `{}`},
		}},
		swarm.NewToolMessage("call_1", "get_weather", `{"temp":4}`),
		swarm.NewToolMessage("call_2", "get_time", "10:00"),
	})

	if system != "Be brief." {
		t.Errorf("system = %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("contents = %d", len(contents))
	}

	if contents[0].Role != "user" {
		t.Errorf("[0].Role = %q", contents[0].Role)
	}

	model := contents[1]
	if model.Role != "model" || len(model.Parts) != 2 {
		t.Fatalf("model content = %+v", model)
	}
	fc, ok := model.Parts[0].(genai.FunctionCall)
	if !ok || fc.Name != "get_weather" || fc.Args["city"] != "Oslo" {
		t.Errorf("function call = %+v", model.Parts[0])
	}

	// Both results coalesce into one function-role entry, correlated by
	// function name.
	fn := contents[2]
	if fn.Role != "function" || len(fn.Parts) != 2 {
		t.Fatalf("function content = %+v", fn)
	}
	fr, ok := fn.Parts[0].(genai.FunctionResponse)
	if !ok || fr.Name != "get_weather" {
		t.Errorf("function response = %+v", fn.Parts[0])
	}
	// JSON object results pass through unwrapped.
	if fr.Response["temp"] != float64(4) {
		t.Errorf("response object = %+v", fr.Response)
	}
	fr2 := fn.Parts[1].(genai.FunctionResponse)
	if fr2.Response["result"] != "10:00" {
		t.Errorf("plain result should be wrapped: %+v", fr2.Response)
	}
}

func TestConvertTools_SchemaRecursion(t *testing.T) {
	schema, err := swarm.DeriveSchema[struct {
		Query   string   `json:"query" jsonschema:"description=Search text"`
		Tags    []string `json:"tags"`
		Limit   int      `json:"limit" jsonschema:"default=10"`
		Verbose bool     `json:"verbose" jsonschema:"default=false"`
	}]("search_orders", "Search past orders.")
	if err != nil {
		t.Fatal(err)
	}

	decls := convertTools([]swarm.CallSchema{*schema})
	if len(decls) != 1 {
		t.Fatalf("decls = %d", len(decls))
	}
	decl := decls[0]
	if decl.Name != "search_orders" || decl.Description != "Search past orders." {
		t.Errorf("decl = %+v", decl)
	}
	params := decl.Parameters
	if params == nil || params.Type != genai.TypeObject {
		t.Fatalf("parameters = %+v", params)
	}
	if params.Properties["query"].Type != genai.TypeString {
		t.Errorf("query type = %v", params.Properties["query"].Type)
	}
	tags := params.Properties["tags"]
	if tags.Type != genai.TypeArray || tags.Items == nil || tags.Items.Type != genai.TypeString {
		t.Errorf("tags schema = %+v", tags)
	}
	if params.Properties["limit"].Type != genai.TypeInteger {
		t.Errorf("limit type = %v", params.Properties["limit"].Type)
	}
	if params.Properties["verbose"].Type != genai.TypeBoolean {
		t.Errorf("verbose type = %v", params.Properties["verbose"].Type)
	}
	if !reflect.DeepEqual(params.Required, []string{"query", "tags"}) {
		t.Errorf("required = %v", params.Required)
	}
}

func TestConvertTools_NoParameters(t *testing.T) {
	decls := convertTools([]swarm.CallSchema{{Name: "escalate", Description: "Escalate."}})
	if decls[0].Parameters != nil {
		t.Errorf("zero-parameter tool should omit the schema, got %+v", decls[0].Parameters)
	}
}

func TestConvertToolChoice(t *testing.T) {
	if convertToolChoice(swarm.ToolChoiceAuto) != nil {
		t.Error("auto should use the default config")
	}
	required := convertToolChoice(swarm.ToolChoiceRequired)
	if required == nil || required.FunctionCallingConfig.Mode != genai.FunctionCallingAny {
		t.Errorf("required = %+v", required)
	}
	none := convertToolChoice(swarm.ToolChoiceNone)
	if none == nil || none.FunctionCallingConfig.Mode != genai.FunctionCallingNone {
		t.Errorf("none = %+v", none)
	}
	forced := convertToolChoice(swarm.ToolChoiceFunction("get_weather"))
	if forced == nil || forced.FunctionCallingConfig.Mode != genai.FunctionCallingAny ||
		!reflect.DeepEqual(forced.FunctionCallingConfig.AllowedFunctionNames, []string{"get_weather"}) {
		t.Errorf("forced = %+v", forced)
	}
}

func TestParseResponse(t *testing.T) {
	in := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []genai.Part{
					genai.Text("Checking."),
					genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Oslo"}},
				},
			},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{
			PromptTokenCount:     7,
			CandidatesTokenCount: 3,
			TotalTokenCount:      10,
		},
	}

	resp, err := parseResponse(in, "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}

	if resp.Text() != "Checking." {
		t.Errorf("text = %q", resp.Text())
	}
	calls := resp.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].Name != "get_weather" {
		t.Errorf("name = %q", calls[0].Name)
	}
	if !strings.HasPrefix(calls[0].CallID, "call_") || len(calls[0].CallID) <= len("call_") {
		t.Errorf("CallID = %q, want synthesized id", calls[0].CallID)
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(calls[0].Arguments), &args); err != nil || args["city"] != "Oslo" {
		t.Errorf("arguments = %q", calls[0].Arguments)
	}
	// Function calls take precedence over the reported finish reason.
	if resp.FinishReason != swarm.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
	if resp.ModelID != "gemini-2.0-flash" {
		t.Errorf("ModelID = %q", resp.ModelID)
	}
}

func TestParseResponse_NoCandidates(t *testing.T) {
	_, err := parseResponse(&genai.GenerateContentResponse{}, "gemini-2.0-flash")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMapError(t *testing.T) {
	err := mapError(&googleapi.Error{Code: 403, Message: "key not authorized"})

	var svcErr *swarm.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.StatusCode != 403 {
		t.Errorf("StatusCode = %d", svcErr.StatusCode)
	}
	if !errors.Is(err, swarm.ErrAuth) {
		t.Errorf("not ErrAuth: %v", err)
	}
}
