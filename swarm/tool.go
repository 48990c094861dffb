// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
)

// ToolKind is a tool's declared dispatch classification. The dispatcher
// trusts the declaration; it never inspects runtime return values to decide
// what a result means.
type ToolKind string

const (
	// ToolKindFunction tools return plain values that become tool-result content.
	ToolKindFunction ToolKind = "function"
	// ToolKindHandoff tools transfer the conversation to another agent.
	ToolKindHandoff ToolKind = "handoff"
	// ToolKindStop tools end the turn and surface a terminate signal to the caller.
	ToolKindStop ToolKind = "stop"
)

// Tool defines a callable exposed to the model through a derived [CallSchema].
type Tool interface {
	// Name returns the function name as exposed to the model.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Kind returns the declared dispatch classification.
	Kind() ToolKind

	// Schema returns the call schema advertised to the model, or the
	// derivation failure held since construction (ErrSignatureUnavailable).
	Schema() (*CallSchema, error)

	// Invoke calls the tool with the given JSON arguments.
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// FunctionTool is a concrete [Tool] backed by a Go function.
type FunctionTool struct {
	name        string
	description string
	schema      *CallSchema
	schemaErr   error
	defaults    map[string]json.RawMessage
	kind        ToolKind
	fn          func(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolOption configures a [FunctionTool].
type ToolOption func(*FunctionTool)

// WithStopSignal marks the tool as a conversation terminator: after the
// batch containing its call completes, the runner ends the turn and reports
// a [StopSignal] in the TurnResult instead of requesting another completion.
func WithStopSignal() ToolOption {
	return func(t *FunctionTool) { t.kind = ToolKindStop }
}

// NewTool creates a [FunctionTool] from an explicit schema and handler.
func NewTool(name, description string, schema *CallSchema, fn func(ctx context.Context, args json.RawMessage) (any, error), opts ...ToolOption) *FunctionTool {
	t := &FunctionTool{
		name:        name,
		description: description,
		schema:      schema,
		kind:        ToolKindFunction,
		fn:          fn,
	}
	if t.schema == nil {
		t.schema = &CallSchema{Name: name, Description: strings.TrimSpace(description)}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTypedTool creates a [FunctionTool] whose call schema is derived once,
// at construction, from the Args type parameter, and whose arguments are
// deserialized for the handler.
//
// Args should be a struct with json tags. Use the `jsonschema` struct tag
// for schema metadata; a parameter without a `default` is required:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name"`
//	    Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit,default=celsius"`
//	}
func NewTypedTool[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error), opts ...ToolOption) *FunctionTool {
	t := &FunctionTool{
		name:        name,
		description: description,
		kind:        ToolKindFunction,
	}

	d, err := deriveArgs(name, description, reflect.TypeFor[Args]())
	if err != nil {
		// Surfaced by Schema() when the registry is built; the tool value
		// itself stays constructible.
		t.schemaErr = err
	} else {
		t.schema = d.schema
		t.defaults = d.defaults
	}

	t.fn = func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args Args
		if err := json.Unmarshal(withDefaults(raw, t.defaults), &args); err != nil {
			return nil, &ToolError{
				ToolName: name,
				Message:  "invalid arguments: " + err.Error(),
				Err:      ErrArgumentDecode,
			}
		}
		return fn(ctx, args)
	}

	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *FunctionTool) Name() string        { return t.name }
func (t *FunctionTool) Description() string { return t.description }
func (t *FunctionTool) Kind() ToolKind      { return t.kind }

// Schema returns the call schema, or the derivation failure recorded at
// construction.
func (t *FunctionTool) Schema() (*CallSchema, error) {
	if t.schemaErr != nil {
		return nil, t.schemaErr
	}
	return t.schema, nil
}

// Invoke calls the tool's backing function.
func (t *FunctionTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.fn == nil {
		return nil, &ToolError{
			ToolName: t.name,
			Message:  "tool has no implementation",
			Err:      ErrTool,
		}
	}
	return t.fn(ctx, args)
}

// withDefaults fills declared defaults into argument keys the model omitted.
func withDefaults(raw json.RawMessage, defaults map[string]json.RawMessage) json.RawMessage {
	if len(defaults) == 0 {
		return raw
	}
	var args map[string]json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return raw // let the typed decode report the malformed payload
		}
	}
	if args == nil {
		args = make(map[string]json.RawMessage, len(defaults))
	}
	changed := false
	for k, v := range defaults {
		if _, ok := args[k]; !ok {
			args[k] = v
			changed = true
		}
	}
	if !changed {
		return raw
	}
	merged, err := json.Marshal(args)
	if err != nil {
		return raw
	}
	return merged
}

// HandoffTool is a [Tool] that transfers the conversation to another agent.
// The target is stored by name and resolved through the runner's [Directory]
// at dispatch time, so mutually-referring agents need no declaration-time
// cycle.
type HandoffTool struct {
	name        string
	description string
	target      string
	schema      *CallSchema
}

// NewHandoff creates a zero-parameter tool that hands the conversation to
// the named agent when the model calls it.
func NewHandoff(name, description, target string) *HandoffTool {
	return &HandoffTool{
		name:        name,
		description: description,
		target:      target,
		schema: &CallSchema{
			Name:        name,
			Description: strings.TrimSpace(description),
			Parameters:  map[string]Property{},
			Required:    []string{},
		},
	}
}

func (t *HandoffTool) Name() string        { return t.name }
func (t *HandoffTool) Description() string { return t.description }
func (t *HandoffTool) Kind() ToolKind      { return ToolKindHandoff }

// Target returns the name of the agent this tool hands control to.
func (t *HandoffTool) Target() string { return t.target }

func (t *HandoffTool) Schema() (*CallSchema, error) { return t.schema, nil }

// Invoke reports the declared target; the dispatcher resolves and applies it.
func (t *HandoffTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	return t.target, nil
}
