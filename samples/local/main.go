// Copyright (c) Microsoft. All rights reserved.

// Command local demonstrates a multi-turn conversational agent running
// entirely on your machine through Ollama.
//
// Ollama must be installed and serving (https://ollama.com), and the model
// pulled:
//
//	ollama pull llama3.2
//	go run .                        # defaults to llama3.2
//	go run . --model qwen2.5:7b     # explicit model
//
// Small local models often emit tool calls as plain JSON text instead of
// structured tool_calls; a chat middleware rewrites those before the runner
// dispatches them.
package main

import (
	"bufio"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/djordjethai/swarm/ollama"
	"github.com/djordjethai/swarm/swarm"
)

//go:embed tool_calling_prompt.md
var toolCallingPrompt string

func main() {
	modelName := flag.String("model", "llama3.2", "Ollama model to use")
	flag.Parse()

	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	logger := slog.Default()

	client, err := ollama.New(ollama.WithModel(*modelName))
	if err != nil {
		log.Fatalf("ollama: %v", err)
	}

	// ── Create the agent ─────────────────────────────────────────────
	agent := swarm.NewAgent("local-assistant",
		swarm.WithInstructions(toolCallingPrompt),
		swarm.WithTools(GetTools()...),
	)

	// The workaround middleware intercepts chat responses and converts
	// text-based tool calls (e.g. `[{"get_weather": {...}}]`) into proper
	// FunctionCallContent objects before the runner dispatches them.
	runner := swarm.NewRunner(client,
		swarm.WithChatMiddleware(ToolCallWorkaroundMiddleware(logger)),
		swarm.WithToolMiddleware(swarm.LoggingToolMiddleware(logger)),
	)

	store := swarm.NewInMemoryStore()
	ctx := context.Background()

	// ── Chat loop ────────────────────────────────────────────────────
	fmt.Printf("Chat with the local assistant on %s (type 'quit' to exit)\n\n", *modelName)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		history, err := store.ListMessages(ctx)
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}
		userMsg := swarm.NewUserMessage(input)

		result, err := runner.RunTurn(ctx, agent, append(history, userMsg))
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}

		fmt.Printf("Assistant: %s\n", finalReply(result))
		if result.Usage.TotalTokens > 0 {
			fmt.Printf("  [tokens: %d in, %d out]\n",
				result.Usage.InputTokens, result.Usage.OutputTokens)
		}

		_ = store.AddMessages(ctx, append([]swarm.Message{userMsg}, result.Messages...))
		fmt.Println()
	}
}

// finalReply returns the text of the last assistant message in the turn.
func finalReply(result *swarm.TurnResult) string {
	var reply string
	for i := range result.Messages {
		m := &result.Messages[i]
		if m.Role == swarm.RoleAssistant {
			if text := m.Text(); text != "" {
				reply = text
			}
		}
	}
	return reply
}
