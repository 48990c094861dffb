// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/djordjethai/swarm/swarm"
)

// GetTools returns the tool definitions for the local assistant.
func GetTools() []swarm.Tool {
	weatherTool := swarm.NewTypedTool("get_weather",
		"Get the current weather for a location.",
		func(ctx context.Context, args struct {
			Location string `json:"location" jsonschema:"description=City name or location"`
			Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit,default=fahrenheit"`
		}) (any, error) {
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
				"time":     now.Format("3:04 PM"),
				"date":     now.Format("Monday, January 2, 2006"),
				"timezone": now.Location().String(),
				"iso8601":  now.Format(time.RFC3339),
			}, nil
		},
	)

	return []swarm.Tool{weatherTool, timeTool, listFilesTool()}
}

// listFilesTool returns the list_local_files tool that lists files in the
// current working directory. It accepts no arguments and returns only
// filenames (no paths, no traversal).
func listFilesTool() swarm.Tool {
	return swarm.NewTool(
		"list_local_files",
		"Lists files in the current working directory of the agent runtime",
		nil,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			// Reject non-empty arguments.
			if len(args) > 0 {
				var m map[string]any
				if err := json.Unmarshal(args, &m); err == nil && len(m) > 0 {
					return nil, &swarm.ToolError{
						ToolName: "list_local_files",
						Message:  "this tool does not accept arguments",
					}
				}
			}

			wd, err := os.Getwd()
			if err != nil {
				return nil, &swarm.ToolError{
					ToolName: "list_local_files",
					Message:  "failed to get working directory",
				}
			}

			entries, err := os.ReadDir(wd)
			if err != nil {
				return nil, &swarm.ToolError{
					ToolName: "list_local_files",
					Message:  "failed to read directory",
				}
			}

			files := make([]string, 0, len(entries))
			for _, e := range entries {
				files = append(files, e.Name())
			}

			return map[string]any{"files": files}, nil
		},
	)
}
