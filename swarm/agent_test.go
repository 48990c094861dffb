// Copyright (c) Microsoft. All rights reserved.

package swarm_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/djordjethai/swarm/swarm"
)

func TestNewAgent(t *testing.T) {
	tool := swarm.NewTool("noop", "Does nothing", nil,
		func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	)

	agent := swarm.NewAgent("Triage Agent",
		swarm.WithModel("gpt-4o"),
		swarm.WithInstructions("Route the user."),
		swarm.WithTools(tool),
	)

	if agent.Name != "Triage Agent" {
		t.Errorf("Name = %q", agent.Name)
	}
	if agent.Model != "gpt-4o" {
		t.Errorf("Model = %q", agent.Model)
	}
	if agent.Instructions != "Route the user." {
		t.Errorf("Instructions = %q", agent.Instructions)
	}
	if len(agent.Tools) != 1 || agent.Tools[0].Name() != "noop" {
		t.Errorf("Tools = %v", agent.Tools)
	}
}

func TestNewDirectory(t *testing.T) {
	a := swarm.NewAgent("A")
	b := swarm.NewAgent("B")

	dir, err := swarm.NewDirectory(a, b)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	got, ok := dir.Lookup("B")
	if !ok {
		t.Fatal("lookup B: not found")
	}
	if got != b {
		t.Errorf("lookup B = %v", got)
	}

	if _, ok := dir.Lookup("C"); ok {
		t.Error("lookup C should miss")
	}

	names := dir.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("Names = %v, want registration order", names)
	}
}

func TestNewDirectory_DuplicateName(t *testing.T) {
	_, err := swarm.NewDirectory(swarm.NewAgent("A"), swarm.NewAgent("A"))
	if err == nil {
		t.Fatal("expected error for duplicate agent name")
	}
}

func TestNewDirectory_EmptyName(t *testing.T) {
	_, err := swarm.NewDirectory(swarm.NewAgent(""))
	if err == nil {
		t.Fatal("expected error for empty agent name")
	}
}
