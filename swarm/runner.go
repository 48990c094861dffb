// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// defaultMaxIterations bounds the number of model calls in a single turn.
const defaultMaxIterations = 40

// Runner drives agent turns against a chat client: it sends the
// conversation to the model, executes the tool calls the model requests,
// follows handoffs between agents, and loops until the active agent
// produces a reply with no tool calls.
//
// A Runner is safe for concurrent use; per-turn state lives in the call.
type Runner struct {
	client            ChatClient
	directory         *Directory
	defaults          *ChatOptions
	maxIterations     int
	completionTimeout time.Duration
	turnMW            []TurnMiddleware
	chatMW            []ChatMiddleware
	toolMW            []ToolMiddleware
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDirectory sets the agent directory used to resolve handoff targets.
// Without a directory every handoff fails with ErrUnknownAgent.
func WithDirectory(d *Directory) RunnerOption {
	return func(r *Runner) {
		r.directory = d
	}
}

// WithMaxIterations caps the model calls per turn. Zero or negative
// restores the default.
func WithMaxIterations(n int) RunnerOption {
	return func(r *Runner) {
		r.maxIterations = n
	}
}

// WithCompletionTimeout bounds each individual model call. The turn as a
// whole is bounded by the caller's context.
func WithCompletionTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.completionTimeout = d
	}
}

// WithChatOptions sets default chat options applied to every model call.
// The active agent's model and tools override them per call.
func WithChatOptions(opts *ChatOptions) RunnerOption {
	return func(r *Runner) {
		r.defaults = opts
	}
}

// WithTurnMiddleware appends middleware around whole turns.
func WithTurnMiddleware(mws ...TurnMiddleware) RunnerOption {
	return func(r *Runner) {
		r.turnMW = append(r.turnMW, mws...)
	}
}

// WithChatMiddleware appends middleware around model calls.
func WithChatMiddleware(mws ...ChatMiddleware) RunnerOption {
	return func(r *Runner) {
		r.chatMW = append(r.chatMW, mws...)
	}
}

// WithToolMiddleware appends middleware around tool invocations.
func WithToolMiddleware(mws ...ToolMiddleware) RunnerOption {
	return func(r *Runner) {
		r.toolMW = append(r.toolMW, mws...)
	}
}

// NewRunner creates a Runner backed by the given chat client.
func NewRunner(client ChatClient, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:        client,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TurnResult is the outcome of a completed turn.
type TurnResult struct {
	// Agent is the agent active when the turn ended. After a handoff this
	// differs from the agent the turn started with, and the caller should
	// route the next turn to it.
	Agent *Agent

	// Messages holds only the messages appended during this turn, in
	// order: each assistant message followed by its tool results, ending
	// with the final assistant reply.
	Messages []Message

	// Stop is set when a stop-signal tool fired. The turn still carries a
	// result for every tool call issued before it ended.
	Stop *StopSignal

	// Usage aggregates token counts across every model call in the turn.
	Usage UsageDetails
}

// RunTurn executes one full turn of the conversation: model calls and tool
// dispatch repeat until the active agent replies without requesting tools,
// a stop-signal tool fires, or the iteration cap is reached.
//
// history is not modified; the appended messages are returned in the
// result and the caller decides whether to keep them. On error no partial
// turn is returned.
func (r *Runner) RunTurn(ctx context.Context, agent *Agent, history []Message) (*TurnResult, error) {
	handler := func(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
		return r.runTurn(ctx, req.Agent, req.History, nil)
	}
	handler = chainTurnMiddleware(handler, r.turnMW...)
	return handler(ctx, &TurnRequest{Agent: agent, History: history})
}

// RunTurnStream executes one full turn like RunTurn, emitting updates as
// the turn progresses. When the client implements StreamingChatClient the
// assistant's text arrives as completion deltas; otherwise whole messages
// are emitted as they are appended. Tool results always arrive as whole
// messages.
//
// The final TurnResult is available from the stream's Result method once
// the stream is exhausted.
func (r *Runner) RunTurnStream(ctx context.Context, agent *Agent, history []Message) *TurnStream {
	ts := &TurnStream{}
	ts.stream = NewResponseStream(ctx, func(ctx context.Context, ch chan<- TurnUpdate) error {
		emit := func(u TurnUpdate) error {
			select {
			case ch <- u:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		handler := func(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
			return r.runTurn(ctx, req.Agent, req.History, emit)
		}
		handler = chainTurnMiddleware(handler, r.turnMW...)
		res, err := handler(ctx, &TurnRequest{Agent: agent, History: history})
		if err != nil {
			return err
		}
		ts.result = res
		return nil
	})
	return ts
}

func (r *Runner) runTurn(ctx context.Context, agent *Agent, history []Message, emit func(TurnUpdate) error) (*TurnResult, error) {
	if agent == nil {
		return nil, fmt.Errorf("%w: no agent", ErrTurn)
	}
	if r.client == nil {
		return nil, fmt.Errorf("%w: no chat client", ErrTurn)
	}

	current := agent
	msgs := make([]Message, len(history), len(history)+4)
	copy(msgs, history)
	start := len(msgs)

	_, canStream := r.client.(StreamingChatClient)
	streamed := emit != nil && canStream

	// The base handler closes over current so streamed deltas are tagged
	// with the agent active at call time, including after a handoff.
	base := func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
		if streamed {
			return r.streamCompletion(ctx, r.client.(StreamingChatClient), messages, opts, current, emit)
		}
		return r.client.Response(ctx, messages, opts)
	}
	chat := chainChatMiddleware(base, r.chatMW...)

	maxIter := r.maxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	var usage UsageDetails
	var stop *StopSignal

	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return nil, fmt.Errorf("%w: exceeded %d model calls without completing", ErrTurn, maxIter)
		}

		reg, err := BuildRegistry(current.Tools)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", current.Name, err)
		}

		opts := MergeChatOptions(r.defaults, &ChatOptions{ModelID: current.Model})
		opts.Tools = reg.Schemas()

		resp, err := r.complete(ctx, chat, PrependInstructions(msgs, current.Instructions), opts)
		if err != nil {
			return nil, err
		}
		usage = usage.Add(resp.Usage)

		for i := range resp.Messages {
			m := &resp.Messages[i]
			if m.Role == RoleAssistant && m.AuthorName == "" {
				m.AuthorName = current.Name
			}
		}
		msgs = append(msgs, resp.Messages...)

		if emit != nil && !streamed {
			for i := range resp.Messages {
				if err := emit(TurnUpdate{Agent: current, Message: &resp.Messages[i]}); err != nil {
					return nil, err
				}
			}
		}

		var calls []*FunctionCallContent
		for i := range resp.Messages {
			calls = append(calls, resp.Messages[i].ToolCalls()...)
		}
		if len(calls) == 0 {
			break
		}

		d := NewDispatcher(current, reg, r.directory, r.toolMW...)
		for _, call := range calls {
			res, err := d.Dispatch(ctx, call)
			if err != nil {
				return nil, err
			}

			content := res.Value
			if res.Handoff != nil {
				// Switch before the next call in this batch so the
				// remaining calls dispatch against the new agent's tools.
				current = res.Handoff
				reg, err = BuildRegistry(current.Tools)
				if err != nil {
					return nil, fmt.Errorf("agent %q: %w", current.Name, err)
				}
				d = NewDispatcher(current, reg, r.directory, r.toolMW...)
				content = transferNotice(current.Name)
			}
			if res.Stop != nil {
				stop = res.Stop
			}

			tm := NewToolMessage(call.CallID, call.Name, content)
			msgs = append(msgs, tm)
			if emit != nil {
				if err := emit(TurnUpdate{Agent: current, Message: &tm}); err != nil {
					return nil, err
				}
			}
		}

		if stop != nil {
			// Every call in the batch has its result recorded; end the
			// turn without asking the model to continue.
			break
		}
	}

	return &TurnResult{
		Agent:    current,
		Messages: msgs[start:],
		Stop:     stop,
		Usage:    usage,
	}, nil
}

// complete performs one model call through the middleware chain, applying
// the per-call timeout and normalizing failures under ErrCompletion.
func (r *Runner) complete(ctx context.Context, chat ChatHandler, messages []Message, opts *ChatOptions) (*ChatResponse, error) {
	if r.completionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.completionTimeout)
		defer cancel()
	}
	resp, err := chat(ctx, messages, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrCompletionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	if resp == nil || len(resp.Messages) == 0 {
		return nil, fmt.Errorf("%w: response contained no messages", ErrCompletion)
	}
	return resp, nil
}

func (r *Runner) streamCompletion(ctx context.Context, client StreamingChatClient, messages []Message, opts *ChatOptions, agent *Agent, emit func(TurnUpdate) error) (*ChatResponse, error) {
	stream, err := client.StreamResponse(ctx, messages, opts)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var updates []ChatResponseUpdate
	for {
		u, ok, err := stream.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		updates = append(updates, u)
		if err := emit(TurnUpdate{Agent: agent, Update: &u}); err != nil {
			return nil, err
		}
	}
	return ChatResponseFromUpdates(updates), nil
}

// transferNotice is the tool result recorded for a handoff call. The
// notice replaces the target's name so the model acknowledges the switch
// instead of echoing an internal identifier.
func transferNotice(name string) string {
	return fmt.Sprintf("Transferred to %s. Adopt persona immediately.", name)
}
