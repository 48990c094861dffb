// Copyright (c) Microsoft. All rights reserved.

package swarm

import "strings"

// Role identifies the author of a [Message].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Message represents a single chat message in a conversation. A conversation
// is an append-only sequence of messages; the turn runner never mutates a
// caller's history in place.
type Message struct {
	Role     Role     `json:"role"`
	Contents Contents `json:"contents,omitempty"`

	// AuthorName names the agent that produced an assistant message, for
	// callers juggling several personas over one history.
	AuthorName string `json:"authorName,omitempty"`
}

// Text returns the concatenated text of all [TextContent] items in this message.
func (m *Message) Text() string {
	var b strings.Builder
	for _, c := range m.Contents {
		if tc, ok := c.(*TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool-call requests carried by this message, in the
// order the model listed them.
func (m *Message) ToolCalls() []*FunctionCallContent {
	var calls []*FunctionCallContent
	for _, c := range m.Contents {
		if fc, ok := c.(*FunctionCallContent); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

// NewUserMessage creates a user-role [Message] from a text string.
func NewUserMessage(text string) Message {
	return Message{
		Role:     RoleUser,
		Contents: Contents{&TextContent{Text: text}},
	}
}

// NewAssistantMessage creates an assistant-role [Message] from a text string.
func NewAssistantMessage(text string) Message {
	return Message{
		Role:     RoleAssistant,
		Contents: Contents{&TextContent{Text: text}},
	}
}

// NewSystemMessage creates a system-role [Message] from a text string.
func NewSystemMessage(text string) Message {
	return Message{
		Role:     RoleSystem,
		Contents: Contents{&TextContent{Text: text}},
	}
}

// NewToolMessage creates a tool-role [Message] answering the call identified
// by callID. The tool name travels with the result for providers that
// correlate by name instead of ID.
func NewToolMessage(callID, name, result string) Message {
	return Message{
		Role: RoleTool,
		Contents: Contents{&FunctionResultContent{
			CallID: callID,
			Name:   name,
			Result: result,
		}},
	}
}

// PrependInstructions inserts a system message at the beginning of the message
// list if instructions are non-empty and no system message already exists.
func PrependInstructions(messages []Message, instructions string) []Message {
	if instructions == "" {
		return messages
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			return messages
		}
	}
	return append([]Message{NewSystemMessage(instructions)}, messages...)
}
