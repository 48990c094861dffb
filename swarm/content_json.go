// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"encoding/json"
	"fmt"
)

// MarshalContentJSON marshals a single Content value into its JSON envelope.
// The envelope carries a $type discriminator so polymorphic content arrays
// round-trip losslessly.
func MarshalContentJSON(c Content) ([]byte, error) {
	switch v := c.(type) {
	case *TextContent:
		return json.Marshal(struct {
			Type string `json:"$type"`
			Text string `json:"text"`
		}{string(ContentTypeText), v.Text})

	case *FunctionCallContent:
		// Arguments stay a plain string: the model's payload is not
		// guaranteed to be valid JSON and must survive the round trip.
		return json.Marshal(struct {
			Type      string `json:"$type"`
			CallID    string `json:"callId"`
			Name      string `json:"name"`
			Arguments string `json:"arguments,omitempty"`
		}{string(ContentTypeFunctionCall), v.CallID, v.Name, v.Arguments})

	case *FunctionResultContent:
		return json.Marshal(struct {
			Type   string `json:"$type"`
			CallID string `json:"callId"`
			Name   string `json:"name,omitempty"`
			Result string `json:"result,omitempty"`
		}{string(ContentTypeFunctionResult), v.CallID, v.Name, v.Result})

	default:
		return nil, fmt.Errorf("unknown content type: %T", c)
	}
}

// UnmarshalContentJSON unmarshals a single Content value from its JSON envelope.
func UnmarshalContentJSON(data []byte) (Content, error) {
	var env struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal content envelope: %w", err)
	}

	switch ContentType(env.Type) {
	case ContentTypeText:
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &TextContent{Text: v.Text}, nil

	case ContentTypeFunctionCall:
		var v struct {
			CallID    string `json:"callId"`
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &FunctionCallContent{CallID: v.CallID, Name: v.Name, Arguments: v.Arguments}, nil

	case ContentTypeFunctionResult:
		var v struct {
			CallID string `json:"callId"`
			Name   string `json:"name"`
			Result string `json:"result"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &FunctionResultContent{CallID: v.CallID, Name: v.Name, Result: v.Result}, nil

	default:
		return nil, fmt.Errorf("unknown content $type: %q", env.Type)
	}
}

// Contents is a typed slice enabling JSON marshal/unmarshal of polymorphic Content arrays.
type Contents []Content

// MarshalJSON serializes each Content item using its $type discriminator.
func (cs Contents) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, len(cs))
	for i, c := range cs {
		b, err := MarshalContentJSON(c)
		if err != nil {
			return nil, fmt.Errorf("marshal content[%d]: %w", i, err)
		}
		items[i] = b
	}
	return json.Marshal(items)
}

// UnmarshalJSON deserializes a JSON array of Content items using the $type discriminator.
func (cs *Contents) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]Content, len(raw))
	for i, r := range raw {
		c, err := UnmarshalContentJSON(r)
		if err != nil {
			return fmt.Errorf("unmarshal content[%d]: %w", i, err)
		}
		result[i] = c
	}
	*cs = result
	return nil
}
