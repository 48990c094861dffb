// Copyright (c) Microsoft. All rights reserved.

package swarm_test

import (
	"encoding/json"
	"testing"

	"github.com/djordjethai/swarm/swarm"
)

// --- Content JSON round-trip tests ---

func TestContentJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content swarm.Content
		check   func(t *testing.T, got swarm.Content)
	}{
		{
			name:    "TextContent",
			content: &swarm.TextContent{Text: "hello"},
			check: func(t *testing.T, got swarm.Content) {
				tc, ok := got.(*swarm.TextContent)
				if !ok {
					t.Fatalf("expected *TextContent, got %T", got)
				}
				if tc.Text != "hello" {
					t.Errorf("text = %q, want %q", tc.Text, "hello")
				}
			},
		},
		{
			name:    "FunctionCallContent",
			content: &swarm.FunctionCallContent{CallID: "c1", Name: "get_weather", Arguments: `{"city":"Seattle"}`},
			check: func(t *testing.T, got swarm.Content) {
				fc, ok := got.(*swarm.FunctionCallContent)
				if !ok {
					t.Fatalf("expected *FunctionCallContent, got %T", got)
				}
				if fc.CallID != "c1" || fc.Name != "get_weather" {
					t.Errorf("CallID=%q Name=%q", fc.CallID, fc.Name)
				}
				if fc.Arguments != `{"city":"Seattle"}` {
					t.Errorf("Arguments = %q", fc.Arguments)
				}
			},
		},
		{
			name:    "FunctionResultContent",
			content: &swarm.FunctionResultContent{CallID: "c1", Name: "get_weather", Result: "72°F"},
			check: func(t *testing.T, got swarm.Content) {
				fr, ok := got.(*swarm.FunctionResultContent)
				if !ok {
					t.Fatalf("expected *FunctionResultContent, got %T", got)
				}
				if fr.CallID != "c1" {
					t.Errorf("CallID = %q", fr.CallID)
				}
				if fr.Result != "72°F" {
					t.Errorf("Result = %q", fr.Result)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := swarm.MarshalContentJSON(tc.content)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			got, err := swarm.UnmarshalContentJSON(data)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if got.Type() != tc.content.Type() {
				t.Errorf("type = %q, want %q", got.Type(), tc.content.Type())
			}

			tc.check(t, got)
		})
	}
}

func TestContentJSONHasTypeDiscriminator(t *testing.T) {
	data, err := swarm.MarshalContentJSON(&swarm.TextContent{Text: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatal(err)
	}
	typ, ok := envelope["$type"]
	if !ok {
		t.Fatal("missing $type field in JSON")
	}
	if typ != "text" {
		t.Errorf("$type = %q, want %q", typ, "text")
	}
}

func TestContentJSON_ArgumentsSurviveInvalidJSON(t *testing.T) {
	// Models emit argument payloads that are not always valid JSON; the
	// envelope must carry them through verbatim.
	original := &swarm.FunctionCallContent{CallID: "c9", Name: "fn", Arguments: `{"broken":`}

	data, err := swarm.MarshalContentJSON(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := swarm.UnmarshalContentJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	fc := got.(*swarm.FunctionCallContent)
	if fc.Arguments != `{"broken":` {
		t.Errorf("Arguments = %q, want the original payload untouched", fc.Arguments)
	}
}

func TestContentsSliceMarshalUnmarshal(t *testing.T) {
	original := swarm.Contents{
		&swarm.TextContent{Text: "hello"},
		&swarm.FunctionCallContent{CallID: "c1", Name: "fn", Arguments: "{}"},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored swarm.Contents
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(restored) != 2 {
		t.Fatalf("len = %d, want 2", len(restored))
	}
	if restored[0].Type() != swarm.ContentTypeText {
		t.Errorf("[0] type = %q", restored[0].Type())
	}
	if restored[1].Type() != swarm.ContentTypeFunctionCall {
		t.Errorf("[1] type = %q", restored[1].Type())
	}
}

func TestUnmarshalContentJSON_UnknownType(t *testing.T) {
	data := []byte(`{"$type":"unknown_type","foo":"bar"}`)
	_, err := swarm.UnmarshalContentJSON(data)
	if err == nil {
		t.Fatal("expected error for unknown $type")
	}
}
