// Copyright (c) Microsoft. All rights reserved.

package swarm

import "fmt"

// Agent is one conversational persona: a name, a model identifier, system
// instructions, and the tools the model may call while this agent is active.
//
// An Agent is a plain data record, immutable by convention: construct every
// agent once at startup and treat it as read-only afterwards. Agents never
// reference each other directly; a [HandoffTool] names its target and the
// runner resolves it through a [Directory], so triage ↔ sales style mutual
// references need no declaration cycle.
//
// Create one with [NewAgent] and functional options:
//
//	agent := swarm.NewAgent("Sales Agent",
//	    swarm.WithModel("gpt-4o-mini"),
//	    swarm.WithInstructions("You are a sales agent for ACME Inc."),
//	    swarm.WithTools(executeOrder, transferBackToTriage),
//	)
type Agent struct {
	Name         string
	Model        string
	Instructions string
	Tools        []Tool
}

// AgentOption configures an [Agent] via [NewAgent].
type AgentOption func(*Agent)

// WithModel sets the model identifier requested for this agent's completions.
func WithModel(model string) AgentOption {
	return func(a *Agent) { a.Model = model }
}

// WithInstructions sets the system instructions for the agent.
func WithInstructions(instructions string) AgentOption {
	return func(a *Agent) { a.Instructions = instructions }
}

// WithTools adds tools to the agent's tool set.
func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.Tools = append(a.Tools, tools...) }
}

// NewAgent creates an Agent with the given name and options.
func NewAgent(name string, opts ...AgentOption) *Agent {
	a := &Agent{Name: name}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Directory is a process-wide, read-only map from agent name to agent,
// populated once at startup. Handoff targets are resolved against it at
// dispatch time.
type Directory struct {
	agents map[string]*Agent
	names  []string
}

// NewDirectory builds a directory from the given agents. Every agent must
// have a unique, non-empty name.
func NewDirectory(agents ...*Agent) (*Directory, error) {
	d := &Directory{agents: make(map[string]*Agent, len(agents))}
	for _, a := range agents {
		if a == nil || a.Name == "" {
			return nil, fmt.Errorf("directory: agent without a name")
		}
		if _, exists := d.agents[a.Name]; exists {
			return nil, fmt.Errorf("duplicate agent name %q", a.Name)
		}
		d.agents[a.Name] = a
		d.names = append(d.names, a.Name)
	}
	return d, nil
}

// Lookup resolves an agent by name.
func (d *Directory) Lookup(name string) (*Agent, bool) {
	a, ok := d.agents[name]
	return a, ok
}

// Names returns the registered agent names in registration order.
func (d *Directory) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}
