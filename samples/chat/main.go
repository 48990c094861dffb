// Copyright (c) Microsoft. All rights reserved.

// Command chat demonstrates a multi-turn conversational agent with tool use.
//
// It works with both direct OpenAI and Azure AI Foundry endpoints.
//
// Usage with OpenAI:
//
//	export OPENAI_API_KEY=sk-...
//	go run .
//
// Usage with Azure AI Foundry:
//
//	export AZURE_FOUNDRY_ENDPOINT=https://<project>.services.ai.azure.com/openai/deployments/<deployment>
//	export AZURE_FOUNDRY_KEY=<your-key>
//	export AZURE_FOUNDRY_MODEL=gpt-4o          # optional, defaults to gpt-4o
//	go run .
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/joho/godotenv"

	"github.com/djordjethai/swarm/openai"
	"github.com/djordjethai/swarm/swarm"
)

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	// Enable debug logging if requested
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	client := newChatClient()

	// Define tools. Defaults declared in the schema are filled in before the
	// handler sees the arguments.
	weatherTool := swarm.NewTypedTool("get_weather",
		"Get the current weather for a location.",
		func(ctx context.Context, args struct {
			Location string `json:"location" jsonschema:"description=City name or location"`
			Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit,default=fahrenheit"`
		}) (any, error) {
			// Simulated weather API
			temp := 72
			if args.Unit == "celsius" {
				temp = 22
			}
			return map[string]any{
				"location":    args.Location,
				"temperature": temp,
				"unit":        args.Unit,
				"condition":   "sunny",
			}, nil
		},
	)

	timeTool := swarm.NewTool("get_time",
		"Get the current time.",
		nil,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			now := time.Now()
			return map[string]string{
				"time":    now.Format("3:04 PM"),
				"date":    now.Format("Monday, January 2, 2006"),
				"iso8601": now.Format(time.RFC3339),
			}, nil
		},
	)

	// Create the agent and the runner that drives its turns.
	agent := swarm.NewAgent("assistant",
		swarm.WithInstructions("You are a helpful assistant. When asked about the weather, use the get_weather tool. When asked about the time, use the get_time tool. Keep responses concise."),
		swarm.WithTools(weatherTool, timeTool),
	)

	runner := swarm.NewRunner(client,
		swarm.WithTurnMiddleware(swarm.LoggingTurnMiddleware(slog.Default())),
	)

	// History lives in a store so every turn sees the full conversation.
	store := swarm.NewInMemoryStore()
	ctx := context.Background()

	fmt.Println("Chat with the assistant (type 'quit' to exit, 'stream' prefix for streaming)")
	fmt.Println()

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

		if strings.HasPrefix(input, "stream ") {
			// Streaming mode
			input = strings.TrimPrefix(input, "stream ")
			userMsg := swarm.NewUserMessage(input)

			stream := runner.RunTurnStream(ctx, agent, append(history, userMsg))
			fmt.Print("Assistant: ")
			for {
				update, ok, err := stream.Next(ctx)
				if err != nil || !ok {
					break
				}
				if update.Update != nil {
					fmt.Print(update.Update.Text())
				}
			}
			fmt.Println()

			result, err := stream.Result(ctx)
			stream.Close()
			if err != nil {
				log.Printf("Stream error: %v", err)
				continue
			}
			_ = store.AddMessages(ctx, append([]swarm.Message{userMsg}, result.Messages...))
		} else {
			// Non-streaming mode
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
		}
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

// newChatClient creates an OpenAI-compatible client, choosing between Azure AI
// Foundry and direct OpenAI based on which environment variables are set.
func newChatClient() *openai.Client {
	// Azure AI Foundry uses the OpenAI-compatible endpoint.
	if endpoint := os.Getenv("AZURE_FOUNDRY_ENDPOINT"); endpoint != "" {
		key := os.Getenv("AZURE_FOUNDRY_KEY")
		model := os.Getenv("AZURE_FOUNDRY_MODEL")
		if model == "" {
			model = "gpt-4o"
		}

		fmt.Printf("Using Azure AI Foundry: %s\n", endpoint)

		// If no key provided, use Azure AD authentication
		if key == "" {
			fmt.Println("Using Azure AD authentication (DefaultAzureCredential)")
			cred, err := azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				log.Fatalf("Failed to create Azure credential: %v", err)
			}
			return openai.NewAzure(endpoint, "",
				openai.WithModel(model),
				openai.WithAzureCredential(cred),
			)
		}

		// API key authentication, sent as the api-key header.
		return openai.NewAzure(endpoint, key,
			openai.WithModel(model),
		)
	}

	// Direct OpenAI
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("Set OPENAI_API_KEY or AZURE_FOUNDRY_ENDPOINT")
	}
	return openai.New(apiKey,
		openai.WithModel("gpt-4o"),
	)
}
