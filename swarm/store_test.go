// Copyright (c) Microsoft. All rights reserved.

package swarm_test

import (
	"context"
	"testing"

	"github.com/djordjethai/swarm/swarm"
)

func TestInMemoryStore(t *testing.T) {
	store := swarm.NewInMemoryStore()
	ctx := context.Background()

	msgs, err := store.ListMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("new store has %d messages", len(msgs))
	}

	if err := store.AddMessages(ctx, []swarm.Message{
		swarm.NewUserMessage("hi"),
		swarm.NewAssistantMessage("hello"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddMessages(ctx, []swarm.Message{swarm.NewUserMessage("again")}); err != nil {
		t.Fatal(err)
	}

	msgs, err = store.ListMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Text() != "hi" || msgs[2].Text() != "again" {
		t.Errorf("order = %q ... %q", msgs[0].Text(), msgs[2].Text())
	}
}

func TestInMemoryStore_ListReturnsCopy(t *testing.T) {
	store := swarm.NewInMemoryStore()
	ctx := context.Background()

	if err := store.AddMessages(ctx, []swarm.Message{swarm.NewUserMessage("original")}); err != nil {
		t.Fatal(err)
	}

	msgs, _ := store.ListMessages(ctx)
	msgs[0] = swarm.NewUserMessage("mutated")

	again, _ := store.ListMessages(ctx)
	if again[0].Text() != "original" {
		t.Errorf("store content changed through a listed slice: %q", again[0].Text())
	}
}
