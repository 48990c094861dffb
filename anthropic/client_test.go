// Copyright (c) Microsoft. All rights reserved.

package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/djordjethai/swarm/swarm"
)

// mockTransportFunc is a RoundTripper that delegates to a function.
type mockTransportFunc func(*http.Request) (*http.Response, error)

func (f mockTransportFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newMockHTTPClient(fn func(*http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{Transport: mockTransportFunc(fn)}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClient_Response(t *testing.T) {
	apiResp := `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"stop_reason": "end_turn",
		"content": [{"type": "text", "text": "Hello!"}],
		"usage": {"input_tokens": 12, "output_tokens": 4}
	}`

	var sentBody map[string]any
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", req.URL.Path)
		}
		if req.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("api key header = %q", req.Header.Get("X-Api-Key"))
		}
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &sentBody)
		return jsonResponse(200, apiResp), nil
	})

	client := New("test-key",
		WithModel("claude-sonnet-4-5"),
		WithHTTPClient(httpClient),
	)

	schema, err := swarm.DeriveSchema[struct {
		City string `json:"city"`
	}]("get_weather", "Get the weather.")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Response(context.Background(),
		[]swarm.Message{
			swarm.NewSystemMessage("Be brief."),
			swarm.NewUserMessage("hi"),
		},
		&swarm.ChatOptions{Tools: []swarm.CallSchema{*schema}},
	)
	if err != nil {
		t.Fatalf("Response: %v", err)
	}

	if sentBody["model"] != "claude-sonnet-4-5" {
		t.Errorf("model = %v", sentBody["model"])
	}
	// The Messages API requires max_tokens; the client supplies its default.
	if sentBody["max_tokens"] != float64(defaultMaxTokens) {
		t.Errorf("max_tokens = %v", sentBody["max_tokens"])
	}
	system, ok := sentBody["system"].([]any)
	if !ok || len(system) != 1 {
		t.Fatalf("system = %v", sentBody["system"])
	}
	if block := system[0].(map[string]any); block["text"] != "Be brief." {
		t.Errorf("system text = %v", block["text"])
	}
	msgs, ok := sentBody["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Errorf("messages = %v", sentBody["messages"])
	}
	tools, ok := sentBody["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("tools = %v", sentBody["tools"])
	}
	if tool := tools[0].(map[string]any); tool["name"] != "get_weather" {
		t.Errorf("tool name = %v", tool["name"])
	}

	if resp.Text() != "Hello!" {
		t.Errorf("Text = %q", resp.Text())
	}
	if resp.FinishReason != swarm.FinishReasonStop {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 4 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestClient_Response_AuthError(t *testing.T) {
	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`), nil
	})

	client := New("bad-key",
		WithModel("claude-sonnet-4-5"),
		WithHTTPClient(httpClient),
	)

	_, err := client.Response(context.Background(),
		[]swarm.Message{swarm.NewUserMessage("hi")},
		nil,
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, swarm.ErrAuth) {
		t.Errorf("not ErrAuth: %v", err)
	}
	var svcErr *swarm.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatal("expected ServiceError")
	}
	if svcErr.StatusCode != 401 {
		t.Errorf("StatusCode = %d", svcErr.StatusCode)
	}
}

func TestClient_StreamResponse(t *testing.T) {
	events := []string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"msg_02","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[],"stop_reason":null,"usage":{"input_tokens":10,"output_tokens":1}}}`,
		``,
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Looking"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" it up."}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"toolu_9","name":"get_weather","input":{}}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"city\":"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"\"Rome\"}"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":1}`,
		``,
		`event: message_delta`,
		`data: {"type":"message_delta","delta":{"stop_reason":"tool_use","stop_sequence":null},"usage":{"output_tokens":6}}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}
	sseBody := strings.Join(events, "\n")

	httpClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		if !bytes.Contains(body, []byte(`"stream":true`)) {
			t.Errorf("request not marked streaming: %s", body)
		}
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body:       io.NopCloser(strings.NewReader(sseBody)),
		}, nil
	})

	client := New("test-key",
		WithModel("claude-sonnet-4-5"),
		WithHTTPClient(httpClient),
	)

	stream, err := client.StreamResponse(context.Background(),
		[]swarm.Message{swarm.NewUserMessage("weather in Rome?")},
		nil,
	)
	if err != nil {
		t.Fatalf("StreamResponse: %v", err)
	}
	defer stream.Close()

	updates, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(updates) < 4 {
		t.Fatalf("updates = %d, want >= 4", len(updates))
	}

	resp := swarm.ChatResponseFromUpdates(updates)
	if resp.Text() != "Looking it up." {
		t.Errorf("text = %q", resp.Text())
	}

	calls := resp.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].CallID != "toolu_9" || calls[0].Name != "get_weather" {
		t.Errorf("call = %+v", calls[0])
	}
	if calls[0].Arguments != `{"city":"Rome"}` {
		t.Errorf("arguments = %q", calls[0].Arguments)
	}

	if resp.FinishReason != swarm.FinishReasonToolCalls {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 6 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}
