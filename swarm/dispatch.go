// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StopSignal reports that a stop-kind tool asked to end the conversation.
// The conversation-loop caller decides how to act on it; the runtime never
// terminates the process itself.
type StopSignal struct {
	// Tool is the name of the tool that raised the signal.
	Tool string
	// Result is the tool's rendered result content.
	Result string
}

// DispatchResult is the tagged outcome of one tool dispatch: a plain value,
// an agent handoff, or a stop signal (a stop also carries the rendered
// value). The classification comes from the tool's declared kind, never from
// inspecting the runtime type of its return value.
type DispatchResult struct {
	Value   string
	Handoff *Agent
	Stop    *StopSignal
}

// Dispatcher resolves and executes the tool calls of one assistant-message
// batch under a fixed registry. It never applies an agent switch itself;
// that is the runner's job, which also rebuilds the dispatcher whenever the
// active agent changes.
type Dispatcher struct {
	agent     *Agent
	registry  *Registry
	directory *Directory
	invoke    ToolHandler
}

// NewDispatcher builds a dispatcher for the given agent's registry. Handoff
// targets resolve against directory, which may be nil when no handoffs are
// expected.
func NewDispatcher(agent *Agent, registry *Registry, directory *Directory, mws ...ToolMiddleware) *Dispatcher {
	base := func(ctx context.Context, req *ToolRequest) (any, error) {
		return req.Tool.Invoke(ctx, req.Arguments)
	}
	return &Dispatcher{
		agent:     agent,
		registry:  registry,
		directory: directory,
		invoke:    chainToolMiddleware(base, mws...),
	}
}

// Dispatch executes one requested tool call: decode the arguments, resolve
// the name, invoke through the middleware chain, classify by declared kind.
// Malformed arguments fail with [ErrArgumentDecode] before the tool runs;
// an unresolved name fails with [ErrUnknownTool]; an error returned by the
// tool itself propagates unmodified.
func (d *Dispatcher) Dispatch(ctx context.Context, call *FunctionCallContent) (*DispatchResult, error) {
	raw := normalizeArguments(call.Arguments)
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: tool %q: %v", ErrArgumentDecode, call.Name, err)
	}
	if decoded == nil {
		return nil, fmt.Errorf("%w: tool %q: arguments must be a JSON object", ErrArgumentDecode, call.Name)
	}

	tool, ok := d.registry.Lookup(call.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}

	result, err := d.invoke(ctx, &ToolRequest{
		Agent:     d.agent,
		Tool:      tool,
		CallID:    call.CallID,
		Arguments: raw,
	})
	if err != nil {
		// The tool's own failure; propagate without rewrapping.
		return nil, err
	}

	switch tool.Kind() {
	case ToolKindHandoff:
		name, _ := result.(string)
		if name == "" {
			return nil, fmt.Errorf("%w: handoff tool %q named no target", ErrUnknownAgent, tool.Name())
		}
		if d.directory == nil {
			return nil, fmt.Errorf("%w: %q (no agent directory configured)", ErrUnknownAgent, name)
		}
		next, ok := d.directory.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
		}
		return &DispatchResult{Handoff: next}, nil

	case ToolKindStop:
		rendered := renderResult(result)
		return &DispatchResult{
			Value: rendered,
			Stop:  &StopSignal{Tool: tool.Name(), Result: rendered},
		}, nil

	default:
		return &DispatchResult{Value: renderResult(result)}, nil
	}
}

// normalizeArguments treats an absent argument payload as the empty object.
func normalizeArguments(args string) json.RawMessage {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(trimmed)
}

// renderResult coerces a tool's return value to text for transport.
func renderResult(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case json.RawMessage:
		return string(r)
	case []byte:
		return string(r)
	case fmt.Stringer:
		return r.String()
	default:
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Sprintf("%v", r)
		}
		return string(b)
	}
}
