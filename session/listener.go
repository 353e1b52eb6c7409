package session

import (
	"context"
	"fmt"

	"github.com/picatz/chatgpt"
)

// Listener receives the events of a streamed request.
//
// OnEvent is called for each decoded chunk in order. Exactly one of OnClosed
// or OnFailure is called once the stream ends. All calls happen on the relay
// goroutine.
type Listener[T any] interface {
	OnEvent(T)
	OnClosed()
	OnFailure(error)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are
// skipped.
type ListenerFuncs[T any] struct {
	Event   func(T)
	Closed  func()
	Failure func(error)
}

func (l ListenerFuncs[T]) OnEvent(v T) {
	if l.Event != nil {
		l.Event(v)
	}
}

func (l ListenerFuncs[T]) OnClosed() {
	if l.Closed != nil {
		l.Closed()
	}
}

func (l ListenerFuncs[T]) OnFailure(err error) {
	if l.Failure != nil {
		l.Failure(err)
	}
}

// EventSource is the handle of a running stream relay.
type EventSource struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the relay. The listener sees OnClosed, not OnFailure, for a
// canceled stream.
func (e *EventSource) Cancel() {
	e.cancel()
}

// Done is closed after the listener's final callback returns.
func (e *EventSource) Done() <-chan struct{} {
	return e.done
}

// relay pumps stream into l until it ends.
func relay[T any](ctx context.Context, cancel context.CancelFunc, stream *chatgpt.Stream[T], l Listener[T]) *EventSource {
	es := &EventSource{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(es.done)
		defer cancel()
		defer stream.Close()

		for stream.Next() {
			l.OnEvent(stream.Current())
		}

		err := stream.Err()
		if err != nil && ctx.Err() == nil {
			l.OnFailure(fmt.Errorf("%w: %w", chatgpt.ErrStreamClosed, err))
			return
		}
		l.OnClosed()
	}()

	return es
}
