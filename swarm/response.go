// Copyright (c) Microsoft. All rights reserved.

package swarm

import "strings"

// ChatResponse is the complete (non-streaming) response from a [ChatClient].
type ChatResponse struct {
	Messages     []Message
	ResponseID   string
	ModelID      string
	FinishReason FinishReason
	Usage        UsageDetails
	Extra        map[string]any
}

// Text returns the concatenated text of all messages in this response.
func (r *ChatResponse) Text() string {
	var b strings.Builder
	for i := range r.Messages {
		b.WriteString(r.Messages[i].Text())
	}
	return b.String()
}

// ToolCalls returns every tool-call request across the response's messages,
// in the order the model listed them.
func (r *ChatResponse) ToolCalls() []*FunctionCallContent {
	var calls []*FunctionCallContent
	for i := range r.Messages {
		calls = append(calls, r.Messages[i].ToolCalls()...)
	}
	return calls
}

// ChatResponseUpdate is a single chunk received during streaming from a [ChatClient].
type ChatResponseUpdate struct {
	Contents     Contents
	Role         Role
	ResponseID   string
	ModelID      string
	FinishReason FinishReason
	Usage        UsageDetails
}

// Text returns the concatenated text of all [TextContent] items in this update.
func (u *ChatResponseUpdate) Text() string {
	var b strings.Builder
	for _, c := range u.Contents {
		if tc, ok := c.(*TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// ChatResponseFromUpdates builds a complete [ChatResponse] by merging
// a sequence of streaming updates.
func ChatResponseFromUpdates(updates []ChatResponseUpdate) *ChatResponse {
	resp := &ChatResponse{}
	var allContents Contents
	for _, u := range updates {
		allContents = append(allContents, u.Contents...)
		if u.ResponseID != "" {
			resp.ResponseID = u.ResponseID
		}
		if u.ModelID != "" {
			resp.ModelID = u.ModelID
		}
		if u.FinishReason != "" {
			resp.FinishReason = u.FinishReason
		}
		if u.Usage.TotalTokens > 0 {
			resp.Usage = u.Usage
		}
	}

	// Merge text content deltas into a single TextContent.
	merged := mergeContentDeltas(allContents)
	if len(merged) > 0 {
		role := RoleAssistant
		if len(updates) > 0 && updates[0].Role != "" {
			role = updates[0].Role
		}
		resp.Messages = []Message{{Role: role, Contents: merged}}
	}
	return resp
}

// mergeContentDeltas consolidates sequential TextContent runs into single
// items and stitches streamed function-call fragments back together: a
// FunctionCallContent with neither id nor name continues the arguments of
// the call before it.
func mergeContentDeltas(cs Contents) Contents {
	if len(cs) == 0 {
		return nil
	}
	var merged Contents
	var textBuf strings.Builder
	var call *FunctionCallContent
	flushText := func() {
		if textBuf.Len() > 0 {
			merged = append(merged, &TextContent{Text: textBuf.String()})
			textBuf.Reset()
		}
	}
	flushCall := func() {
		if call != nil {
			merged = append(merged, call)
			call = nil
		}
	}
	for _, c := range cs {
		switch v := c.(type) {
		case *TextContent:
			flushCall()
			textBuf.WriteString(v.Text)
		case *FunctionCallContent:
			flushText()
			if call != nil && v.CallID == "" && v.Name == "" {
				call.Arguments += v.Arguments
				continue
			}
			flushCall()
			cp := *v
			call = &cp
		default:
			flushText()
			flushCall()
			merged = append(merged, c)
		}
	}
	flushText()
	flushCall()
	return merged
}
