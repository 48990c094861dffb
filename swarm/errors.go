// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrTurn is the base error for turn-driver failures.
	ErrTurn = errors.New("turn error")

	// ErrCompletion indicates the completion endpoint failed or returned an
	// unparseable response. Fatal to the current turn.
	ErrCompletion = fmt.Errorf("%w: completion", ErrTurn)

	// ErrCompletionTimeout indicates the completion call exceeded the
	// runner's configured deadline.
	ErrCompletionTimeout = fmt.Errorf("%w: deadline exceeded", ErrCompletion)

	// ErrService is the base error for backend service failures.
	ErrService = errors.New("service error")

	// ErrContentFilter indicates the request was rejected by a content filter.
	ErrContentFilter = fmt.Errorf("%w: content filter", ErrService)

	// ErrInvalidRequest indicates the request was malformed or invalid.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrService)

	// ErrInvalidResponse indicates the service returned an unexpected response.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)

	// ErrAuth indicates an authentication or authorization failure.
	ErrAuth = fmt.Errorf("%w: authentication", ErrService)

	// ErrTool is the base error for tool-related failures.
	ErrTool = errors.New("tool error")

	// ErrSignatureUnavailable indicates a tool's call schema could not be
	// derived because its argument type is not introspectable. Fatal to
	// building that agent's registry.
	ErrSignatureUnavailable = fmt.Errorf("%w: signature unavailable", ErrTool)

	// ErrArgumentDecode indicates a requested tool call carried arguments
	// that do not decode as a JSON object. The tool is never invoked.
	ErrArgumentDecode = fmt.Errorf("%w: malformed arguments", ErrTool)

	// ErrUnknownTool indicates the model requested a tool name absent from
	// the active agent's registry.
	ErrUnknownTool = fmt.Errorf("%w: unknown tool", ErrTool)

	// ErrUnknownAgent indicates a handoff named a target missing from the
	// agent directory.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrMiddleware is the base error for middleware failures.
	ErrMiddleware = errors.New("middleware error")
)

// ServiceError provides rich context for backend service failures.
// Use errors.As to extract it from a wrapped error chain.
type ServiceError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ToolError provides context for tool invocation failures.
type ToolError struct {
	ToolName string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q: %s", e.ToolName, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }
