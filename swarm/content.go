// Copyright (c) Microsoft. All rights reserved.

package swarm

// ContentType identifies the kind of content within a message.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeFunctionCall   ContentType = "functionCall"
	ContentTypeFunctionResult ContentType = "functionResult"
)

// Content is a sealed interface representing a piece of content within a [Message].
// Each concrete type carries data specific to its [ContentType].
// Use a type switch to inspect the underlying type.
type Content interface {
	// Type returns the discriminator for this content item.
	Type() ContentType

	// sealed prevents external implementations.
	sealed()
}

// base is embedded by every concrete Content type to satisfy the sealed marker.
type base struct{}

func (base) sealed() {}

// TextContent holds plain text.
type TextContent struct {
	base
	Text string
}

func (c *TextContent) Type() ContentType { return ContentTypeText }

// FunctionCallContent represents a tool call requested by the model. The
// CallID is the provider-assigned correlation token; Arguments is the
// serialized argument object exactly as the model produced it.
type FunctionCallContent struct {
	base
	CallID    string
	Name      string
	Arguments string // JSON-encoded arguments
}

func (c *FunctionCallContent) Type() ContentType { return ContentTypeFunctionCall }

// FunctionResultContent carries the rendered result of a tool call back to
// the model. CallID correlates it to the request it answers; Name is kept
// alongside because some providers match results by function name rather
// than by ID.
type FunctionResultContent struct {
	base
	CallID string
	Name   string
	Result string
}

func (c *FunctionResultContent) Type() ContentType { return ContentTypeFunctionResult }
