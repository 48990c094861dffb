// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"fmt"
	"sync"
)

// ResponseStream provides a pull-based iterator over streaming responses.
// It wraps a channel internally but exposes a cleaner API with error
// propagation and cleanup guarantees.
//
// Callers must call Close when done, or use a context with cancellation.
type ResponseStream[T any] struct {
	ch        <-chan T
	errCh     <-chan error
	cancel    context.CancelFunc
	closeOnce sync.Once
	err       error
}

// NewResponseStream creates a ResponseStream by running producer in a goroutine.
// The producer should send values to the channel and return any error.
// The channel is closed automatically when the producer returns.
func NewResponseStream[T any](ctx context.Context, producer func(ctx context.Context, ch chan<- T) error) *ResponseStream[T] {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan T, 1) // small buffer to reduce goroutine blocking
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		if err := producer(ctx, ch); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	return &ResponseStream[T]{
		ch:     ch,
		errCh:  errCh,
		cancel: cancel,
	}
}

// Next returns the next value from the stream.
// ok is false when the stream is exhausted. err is non-nil on failure.
func (s *ResponseStream[T]) Next(ctx context.Context) (val T, ok bool, err error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case v, open := <-s.ch:
		if !open {
			// Channel closed; check for producer error
			select {
			case e := <-s.errCh:
				s.err = e
			default:
			}
			var zero T
			return zero, false, s.err
		}
		return v, true, nil
	}
}

// Collect drains the entire stream and returns all values.
func (s *ResponseStream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		val, ok, err := s.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}

// Close cancels the producer and releases resources.
// Safe to call multiple times.
func (s *ResponseStream[T]) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		// Drain remaining items to unblock producer
		for range s.ch {
		}
		// Drain error channel
		select {
		case e := <-s.errCh:
			if s.err == nil {
				s.err = e
			}
		default:
		}
	})
	return nil
}

// TurnUpdate is one streamed increment of a running turn.
type TurnUpdate struct {
	// Agent is the agent active when this update was produced; it changes
	// mid-stream when a handoff occurs.
	Agent *Agent

	// Update carries a completion delta when the provider streams.
	Update *ChatResponseUpdate

	// Message carries a whole appended message: a tool result, or an
	// assistant message from a client without streaming support.
	Message *Message
}

// TurnStream wraps a [ResponseStream] of [TurnUpdate] and carries the final
// [TurnResult] once the stream is exhausted.
type TurnStream struct {
	stream *ResponseStream[TurnUpdate]
	result *TurnResult
}

// Next returns the next streaming update.
func (s *TurnStream) Next(ctx context.Context) (TurnUpdate, bool, error) {
	return s.stream.Next(ctx)
}

// Result drains any remaining updates and returns the turn's final result.
func (s *TurnStream) Result(ctx context.Context) (*TurnResult, error) {
	for {
		_, ok, err := s.stream.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}
	if s.result == nil {
		return nil, fmt.Errorf("%w: stream ended without a result", ErrTurn)
	}
	return s.result, nil
}

// Close releases the underlying stream resources.
func (s *TurnStream) Close() error {
	return s.stream.Close()
}
