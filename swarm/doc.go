// Copyright (c) Microsoft. All rights reserved.

// Package swarm provides a multi-agent conversation runtime for Go. Agents
// are lightweight data records that share one conversation; a Runner drives
// each turn, executing tool calls and following handoffs between agents
// mid-turn.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the openai package), declare agents, and
// run a turn:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//
//	sales := swarm.NewAgent("Sales Agent",
//	    swarm.WithInstructions("Sell the user something."),
//	    swarm.WithTools(quoteTool),
//	)
//	triage := swarm.NewAgent("Triage Agent",
//	    swarm.WithInstructions("Route the user to the right agent."),
//	    swarm.WithTools(swarm.NewHandoff("transfer_to_sales", "Move to sales.", "Sales Agent")),
//	)
//
//	directory, err := swarm.NewDirectory(triage, sales)
//	runner := swarm.NewRunner(client, swarm.WithDirectory(directory))
//
//	result, err := runner.RunTurn(ctx, triage, []swarm.Message{
//	    swarm.NewUserMessage("I'd like to buy something."),
//	})
//
// result.Agent is the agent that ended the turn; route the next user
// message to it. result.Messages holds only the messages the turn
// appended, so the caller owns history entirely.
//
// # Architecture
//
// The package is organized around these key abstractions:
//
//   - [Agent]: a named persona holding instructions, model, and tools.
//     Plain data; all behavior lives in the Runner.
//   - [Runner]: drives a turn to completion, executing model calls, tool
//     dispatch, handoffs, and stop signals.
//   - [Directory]: resolves handoff targets by agent name.
//   - [ChatClient]: interface for LLM backends (implemented by provider
//     packages).
//   - [Tool]: callable functions exposed to the model, including
//     [HandoffTool] for agent transfers.
//   - [Content]: sealed interface over message parts (text, function
//     calls, function results).
//   - [ResponseStream]: generic pull-based iterator for streaming
//     responses.
//   - Middleware: three levels (Turn, Chat, Tool) for cross-cutting
//     concerns.
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic schema
// derivation from struct tags:
//
//	type RefundArgs struct {
//	    ItemID string `json:"item_id" jsonschema:"description=The item ID to refund"`
//	    Reason string `json:"reason"  jsonschema:"default=NOT SPECIFIED"`
//	}
//
//	refund := swarm.NewTypedTool("execute_refund", "Refund an item",
//	    func(ctx context.Context, args RefundArgs) (any, error) {
//	        return processRefund(args.ItemID, args.Reason)
//	    },
//	)
//
// A parameter with a default value is optional; everything else is
// required. Tools marked [WithStopSignal] end the turn when they fire,
// surfacing their result in [TurnResult].Stop for the caller to act on.
//
// # Handoffs
//
// A handoff is an ordinary tool call. When the model invokes one, the
// Runner switches the active agent before dispatching the rest of the
// batch and records a transfer notice as the call's result, so the new
// agent's persona takes over within the same turn.
package swarm
