// Copyright (c) Microsoft. All rights reserved.

package swarm

// ToolChoice controls how the model selects tools.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ToolChoiceFunction returns a ToolChoice that forces the model to call
// the named function.
func ToolChoiceFunction(name string) ToolChoice {
	return ToolChoice("function:" + name)
}

// ChatOptions configures a single chat completion request.
// Pointer fields use nil to represent "unset" (use provider default).
//
// The runner fills ModelID from the active agent and Tools from the agent's
// registry on every completion call; the remaining fields come from runner
// defaults merged with whatever the caller supplied.
type ChatOptions struct {
	ModelID          string
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	Stop             []string
	Seed             *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Tools            []CallSchema
	ToolChoice       ToolChoice
	User             string

	// Extra holds provider-specific options not covered by standard fields.
	Extra map[string]any
}

// MergeChatOptions produces a new ChatOptions by overlaying override values
// onto base. Nil or zero-value fields in override do not overwrite base.
// Tools are merged by name (override replaces same-named schemas).
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	if base == nil {
		if override == nil {
			return &ChatOptions{}
		}
		cp := *override
		return &cp
	}
	if override == nil {
		cp := *base
		return &cp
	}

	merged := *base

	if override.ModelID != "" {
		merged.ModelID = override.ModelID
	}
	if override.Temperature != nil {
		merged.Temperature = override.Temperature
	}
	if override.TopP != nil {
		merged.TopP = override.TopP
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if len(override.Stop) > 0 {
		merged.Stop = override.Stop
	}
	if override.Seed != nil {
		merged.Seed = override.Seed
	}
	if override.FrequencyPenalty != nil {
		merged.FrequencyPenalty = override.FrequencyPenalty
	}
	if override.PresencePenalty != nil {
		merged.PresencePenalty = override.PresencePenalty
	}
	if override.ToolChoice != "" {
		merged.ToolChoice = override.ToolChoice
	}
	if override.User != "" {
		merged.User = override.User
	}

	// Tools: merge by name, base order first, then new names from override.
	if len(override.Tools) > 0 {
		byName := make(map[string]CallSchema, len(merged.Tools)+len(override.Tools))
		for _, s := range merged.Tools {
			byName[s.Name] = s
		}
		for _, s := range override.Tools {
			byName[s.Name] = s
		}
		schemas := make([]CallSchema, 0, len(byName))
		seen := make(map[string]bool, len(byName))
		for _, s := range merged.Tools {
			if !seen[s.Name] {
				schemas = append(schemas, byName[s.Name])
				seen[s.Name] = true
			}
		}
		for _, s := range override.Tools {
			if !seen[s.Name] {
				schemas = append(schemas, s)
				seen[s.Name] = true
			}
		}
		merged.Tools = schemas
	}

	// Extra: merge into a fresh map so base's map is never written to.
	if len(override.Extra) > 0 {
		ex := make(map[string]any, len(merged.Extra)+len(override.Extra))
		for k, v := range merged.Extra {
			ex[k] = v
		}
		for k, v := range override.Extra {
			ex[k] = v
		}
		merged.Extra = ex
	}

	return &merged
}
