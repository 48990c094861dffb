// Copyright (c) Microsoft. All rights reserved.

// Command acme is a multi-agent customer-service demo for the fictional
// ACME Inc. A triage agent routes the customer to a sales agent or an
// issues-and-repairs agent; every agent can hand the conversation back, and
// escalation to a human ends the session through a stop-signal tool.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	go run .
//
// Other providers:
//
//	SWARM_PROVIDER=azure      # AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY
//	SWARM_PROVIDER=anthropic  # ANTHROPIC_API_KEY
//	SWARM_PROVIDER=ollama     # OLLAMA_HOST (defaults to localhost)
//	SWARM_PROVIDER=gemini     # GEMINI_API_KEY or GOOGLE_API_KEY
//	SWARM_MODEL=<model-id>    # overrides the provider default
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/djordjethai/swarm/anthropic"
	"github.com/djordjethai/swarm/gemini"
	"github.com/djordjethai/swarm/ollama"
	"github.com/djordjethai/swarm/openai"
	"github.com/djordjethai/swarm/swarm"
)

func main() {
	_ = godotenv.Load()

	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx := context.Background()
	stdin := bufio.NewScanner(os.Stdin)

	client, model, err := newClient(ctx)
	if err != nil {
		log.Fatal(err)
	}

	directory, err := swarm.NewDirectory(newAgents(model, stdin)...)
	if err != nil {
		log.Fatal(err)
	}

	runner := swarm.NewRunner(client,
		swarm.WithDirectory(directory),
		swarm.WithToolMiddleware(traceTools()),
	)

	agent, _ := directory.Lookup("Triage Agent")
	store := swarm.NewInMemoryStore()

	for {
		fmt.Print("User: ")
		if !stdin.Scan() {
			break
		}
		input := strings.TrimSpace(stdin.Text())
		if input == "" {
			continue
		}

		history, err := store.ListMessages(ctx)
		if err != nil {
			log.Fatal(err)
		}
		userMsg := swarm.NewUserMessage(input)

		result, err := runner.RunTurn(ctx, agent, append(history, userMsg))
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}

		for i := range result.Messages {
			m := &result.Messages[i]
			if m.Role == swarm.RoleAssistant {
				if text := m.Text(); text != "" {
					fmt.Printf("%s: %s\n", m.AuthorName, text)
				}
			}
		}

		// The next turn goes to whichever agent the conversation ended on.
		agent = result.Agent
		if err := store.AddMessages(ctx, append([]swarm.Message{userMsg}, result.Messages...)); err != nil {
			log.Fatal(err)
		}

		if result.Stop != nil {
			fmt.Println("Escalating to human agent...")
			fmt.Println("\n=== Escalation Report ===")
			fmt.Printf("Summary: %s\n", result.Stop.Result)
			fmt.Println("=========================")
			return
		}
	}
}

// newAgents builds the three ACME personas. Handoff targets are named, not
// referenced, so the mutual transfers between triage and the departments
// need no declaration-time cycle.
func newAgents(model string, stdin *bufio.Scanner) []*swarm.Agent {
	transferToSales := swarm.NewHandoff("transfer_to_sales_agent",
		"Used for anything sales or buying related.",
		"Sales Agent")
	transferToIssues := swarm.NewHandoff("transfer_to_issues_and_repairs",
		"Used for issues, repairs, or refunds.",
		"Issues and Repairs Agent")
	transferBackToTriage := swarm.NewHandoff("transfer_back_to_triage",
		"Call this if the user brings up a topic outside of your purview, including escalating to a human.",
		"Triage Agent")

	escalateToHuman := swarm.NewTypedTool("escalate_to_human",
		"Escalates the conversation to a human agent.",
		func(ctx context.Context, args struct {
			Summary string `json:"summary" jsonschema:"description=A brief summary of the issue to be provided to the human agent"`
		}) (any, error) {
			return args.Summary, nil
		},
		swarm.WithStopSignal(),
	)

	executeOrder := swarm.NewTypedTool("execute_order",
		"Processes an order for a product at a given price.",
		func(ctx context.Context, args struct {
			Product string `json:"product" jsonschema:"description=The name of the product to order"`
			Price   int    `json:"price"   jsonschema:"description=The price of the product in USD"`
		}) (any, error) {
			fmt.Println("\n\n=== Order Summary ===")
			fmt.Printf("Product: %s\n", args.Product)
			fmt.Printf("Price: $%d\n", args.Price)
			fmt.Println("=================")
			fmt.Print("Confirm order? y/n: ")
			if stdin.Scan() && strings.EqualFold(strings.TrimSpace(stdin.Text()), "y") {
				fmt.Println("Order execution successful!")
				return "Success", nil
			}
			fmt.Println("Order cancelled!")
			return "User cancelled order.", nil
		},
	)

	lookUpItem := swarm.NewTypedTool("look_up_item",
		"Finds an item ID based on a search query.",
		func(ctx context.Context, args struct {
			SearchQuery string `json:"search_query" jsonschema:"description=A description or keywords to search for the item"`
		}) (any, error) {
			itemID := "item_132612938"
			fmt.Println("Found item:", itemID)
			return itemID, nil
		},
	)

	executeRefund := swarm.NewTypedTool("execute_refund",
		"Processes a refund for a given item ID and reason.",
		func(ctx context.Context, args struct {
			ItemID string `json:"item_id" jsonschema:"description=The ID of the item to refund"`
			Reason string `json:"reason"  jsonschema:"description=The reason for the refund,default=not provided"`
		}) (any, error) {
			fmt.Println("\n\n=== Refund Summary ===")
			fmt.Printf("Item ID: %s\n", args.ItemID)
			fmt.Printf("Reason: %s\n", args.Reason)
			fmt.Println("=================")
			fmt.Println("Refund execution successful!")
			return "success", nil
		},
	)

	triage := swarm.NewAgent("Triage Agent",
		swarm.WithModel(model),
		swarm.WithInstructions("You are a customer service bot for ACME Inc. "+
			"Introduce yourself. Always be very brief. "+
			"Gather information to direct the customer to the right department. "+
			"But make your questions subtle and natural."),
		swarm.WithTools(transferToSales, transferToIssues, escalateToHuman),
	)

	sales := swarm.NewAgent("Sales Agent",
		swarm.WithModel(model),
		swarm.WithInstructions("You are a sales agent for ACME Inc."+
			" Always answer in a sentence or less."+
			" Follow the following routine with the user:"+
			"1. Ask them about any problems in their life related to catching roadrunners.\n"+
			"2. Casually mention one of ACME's crazy made-up products can help.\n"+
			" - Don't mention price.\n"+
			"3. Once the user is bought in, drop a ridiculous price.\n"+
			"4. Only after everything, and if the user says yes, "+
			"tell them a crazy caveat and execute their order.\n"),
		swarm.WithTools(executeOrder, transferBackToTriage),
	)

	issues := swarm.NewAgent("Issues and Repairs Agent",
		swarm.WithModel(model),
		swarm.WithInstructions("You are a customer support agent for ACME Inc."+
			" Always answer in a sentence or less."+
			" Follow the following routine with the user:"+
			"1. First, ask probing questions and understand the user's problem deeper.\n"+
			" - Unless the user has already provided a reason.\n"+
			"2. Propose a fix (make one up).\n"+
			"3. ONLY if not satisfied, offer a refund.\n"+
			"4. If accepted, search for the ID and then execute refund."),
		swarm.WithTools(executeRefund, lookUpItem, transferBackToTriage),
	)

	return []*swarm.Agent{triage, sales, issues}
}

// traceTools prints every dispatched call as "<agent>: <tool>(<args>)".
func traceTools() swarm.ToolMiddleware {
	return func(next swarm.ToolHandler) swarm.ToolHandler {
		return func(ctx context.Context, req *swarm.ToolRequest) (any, error) {
			fmt.Printf("%s: %s(%s)\n", req.Agent.Name, req.Tool.Name(), compactArgs(req.Arguments))
			return next(ctx, req)
		}
	}
}

func compactArgs(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// newClient selects the completion provider from SWARM_PROVIDER. The model
// can be overridden with SWARM_MODEL; each provider has a sensible default.
func newClient(ctx context.Context) (swarm.ChatClient, string, error) {
	provider := strings.ToLower(os.Getenv("SWARM_PROVIDER"))
	model := os.Getenv("SWARM_MODEL")

	switch provider {
	case "", "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("set OPENAI_API_KEY (or choose another SWARM_PROVIDER)")
		}
		if model == "" {
			model = "gpt-4o-mini"
		}
		return openai.New(apiKey), model, nil

	case "azure":
		endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
		key := os.Getenv("AZURE_OPENAI_KEY")
		if endpoint == "" {
			return nil, "", fmt.Errorf("set AZURE_OPENAI_ENDPOINT for SWARM_PROVIDER=azure")
		}
		if model == "" {
			model = "gpt-4o-mini"
		}
		return openai.NewAzure(endpoint, key), model, nil

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("set ANTHROPIC_API_KEY for SWARM_PROVIDER=anthropic")
		}
		if model == "" {
			model = "claude-sonnet-4-0"
		}
		return anthropic.New(apiKey), model, nil

	case "ollama":
		if model == "" {
			model = "llama3.2"
		}
		client, err := ollama.New()
		if err != nil {
			return nil, "", err
		}
		return client, model, nil

	case "gemini":
		if model == "" {
			model = "gemini-2.0-flash"
		}
		// The gemini package falls back to GEMINI_API_KEY / GOOGLE_API_KEY.
		client, err := gemini.New(ctx, "")
		if err != nil {
			return nil, "", err
		}
		return client, model, nil

	default:
		return nil, "", fmt.Errorf("unknown SWARM_PROVIDER %q", provider)
	}
}
