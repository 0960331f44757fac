package memory

import (
	"context"
	"sync/atomic"
)

// Inbox is a bounded queue tied to a context. Closing it cancels the context
// instead of closing the channel, so late senders fail instead of panicking.
type Inbox[T any] struct {
	channel    chan T
	context    context.Context
	cancel     context.CancelFunc
	bufferSize int
	closed     atomic.Bool
}

func NewInbox[T any](ctx context.Context, bufferSize int) *Inbox[T] {
	inboxCtx, cancel := context.WithCancel(ctx)
	return &Inbox[T]{
		channel:    make(chan T, bufferSize),
		context:    inboxCtx,
		cancel:     cancel,
		bufferSize: bufferSize,
	}
}

func (in *Inbox[T]) Send(ctx context.Context, message T) error {
	if in.closed.Load() {
		return ErrClosed
	}
	select {
	case in.channel <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-in.context.Done():
		return ErrClosed
	}
}

func (in *Inbox[T]) Receive(ctx context.Context) (T, error) {
	select {
	case message := <-in.channel:
		return message, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-in.context.Done():
		var zero T
		return zero, ErrClosed
	}
}

func (in *Inbox[T]) TryReceive() (T, bool) {
	select {
	case message := <-in.channel:
		return message, true
	default:
		var zero T
		return zero, false
	}
}

func (in *Inbox[T]) Close() {
	if in.closed.CompareAndSwap(false, true) {
		in.cancel()
	}
}

func (in *Inbox[T]) IsClosed() bool {
	return in.closed.Load()
}

func (in *Inbox[T]) BufferSize() int {
	return in.bufferSize
}

func (in *Inbox[T]) QueueLength() int {
	return len(in.channel)
}
