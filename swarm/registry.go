// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"fmt"
	"log/slog"
)

// Registry is the closed name→tool mapping built from one agent's tool list.
// The runner rebuilds it whenever the active agent changes, including
// mid-batch after a handoff.
type Registry struct {
	schemas []CallSchema
	tools   map[string]Tool
}

// BuildRegistry derives the schema for every tool and indexes the tools by
// name. Schemas keep declaration order, duplicates included; in the lookup
// map a duplicate name shadows the earlier entry, later declaration winning.
// A tool whose schema cannot be derived fails the build with an error
// wrapping [ErrSignatureUnavailable].
func BuildRegistry(tools []Tool) (*Registry, error) {
	r := &Registry{
		schemas: make([]CallSchema, 0, len(tools)),
		tools:   make(map[string]Tool, len(tools)),
	}
	for _, tool := range tools {
		schema, err := tool.Schema()
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", tool.Name(), err)
		}
		if _, exists := r.tools[tool.Name()]; exists {
			slog.Debug("duplicate tool name, later declaration shadows earlier",
				"tool", tool.Name())
		}
		r.schemas = append(r.schemas, *schema)
		r.tools[tool.Name()] = tool
	}
	return r, nil
}

// Schemas returns the derived call schemas in declaration order.
func (r *Registry) Schemas() []CallSchema {
	return r.schemas
}

// Lookup resolves a tool by the name the model requested.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}
