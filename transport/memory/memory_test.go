package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/envelope"
	"github.com/tailored-agentic-units/courier/transport/memory"
)

func collect(ep *memory.Endpoint) <-chan envelope.Envelope {
	ch := make(chan envelope.Envelope, 16)
	ep.Receive(func(env envelope.Envelope) { ch <- env })
	return ch
}

func next(t *testing.T, ch <-chan envelope.Envelope) envelope.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for envelope")
		return envelope.Envelope{}
	}
}

func none(t *testing.T, ch <-chan envelope.Envelope) {
	t.Helper()
	select {
	case env := <-ch:
		t.Fatalf("unexpected envelope %v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_DirectDelivery(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	alpha, _ := bus.Endpoint("alpha")
	beta, _ := bus.Endpoint("beta")
	gamma, _ := bus.Endpoint("gamma")

	betaIn := collect(beta)
	gammaIn := collect(gamma)

	env := envelope.New("alpha", "ping", "x").To("beta").Build()
	if err := alpha.Emit(context.Background(), env); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	got := next(t, betaIn)
	if got.Head != "ping" || got.Body != "x" || got.From != "alpha" {
		t.Errorf("beta received %v", got)
	}
	none(t, gammaIn)
}

func TestBus_BroadcastSkipsSender(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	alpha, _ := bus.Endpoint("alpha")
	beta, _ := bus.Endpoint("beta")
	gamma, _ := bus.Endpoint("gamma")

	alphaIn := collect(alpha)
	betaIn := collect(beta)
	gammaIn := collect(gamma)

	if err := alpha.Emit(context.Background(), envelope.New("alpha", "news", 1).Build()); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	next(t, betaIn)
	next(t, gammaIn)
	none(t, alphaIn)
}

func TestBus_UnknownEndpoint(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	alpha, _ := bus.Endpoint("alpha")

	err := alpha.Emit(context.Background(), envelope.New("alpha", "ping", nil).To("nobody").Build())
	if !errors.Is(err, memory.ErrUnknownEndpoint) {
		t.Errorf("Emit error = %v, want ErrUnknownEndpoint", err)
	}
}

func TestBus_DuplicateName(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	if _, err := bus.Endpoint("alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.Endpoint("alpha"); !errors.Is(err, memory.ErrDuplicateName) {
		t.Errorf("second Endpoint error = %v, want ErrDuplicateName", err)
	}
}

func TestBus_GeneratedName(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	a, _ := bus.Endpoint("")
	b, _ := bus.Endpoint("")

	if !strings.HasPrefix(a.Name(), "endpoint-") {
		t.Errorf("Name = %q, want endpoint- prefix", a.Name())
	}
	if a.Name() == b.Name() {
		t.Errorf("generated names collide: %q", a.Name())
	}
	if n := len(bus.Names()); n != 2 {
		t.Errorf("Names() has %d entries, want 2", n)
	}
}

func TestEndpoint_Close(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	alpha, _ := bus.Endpoint("alpha")
	beta, _ := bus.Endpoint("beta")
	collect(beta)

	beta.Close()

	select {
	case <-beta.Done():
	case <-time.After(time.Second):
		t.Fatal("pump did not stop after Close")
	}

	err := alpha.Emit(context.Background(), envelope.New("alpha", "ping", nil).To("beta").Build())
	if !errors.Is(err, memory.ErrUnknownEndpoint) {
		t.Errorf("Emit to closed endpoint error = %v, want ErrUnknownEndpoint", err)
	}
	if err := beta.Emit(context.Background(), envelope.New("beta", "ping", nil).Build()); !errors.Is(err, memory.ErrClosed) {
		t.Errorf("Emit from closed endpoint error = %v, want ErrClosed", err)
	}
}

func TestEndpoint_ReceiveOnlyOnce(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	defer bus.Close()

	alpha, _ := bus.Endpoint("alpha")
	beta, _ := bus.Endpoint("beta")

	first := collect(beta)
	second := collect(beta)

	alpha.Emit(context.Background(), envelope.New("alpha", "ping", nil).To("beta").Build())

	next(t, first)
	none(t, second)
}

func TestBus_ClosedRejectsEndpoints(t *testing.T) {
	bus := memory.NewBus(context.Background(), memory.Config{})
	bus.Close()

	if _, err := bus.Endpoint("late"); !errors.Is(err, memory.ErrClosed) {
		t.Errorf("Endpoint after Close error = %v, want ErrClosed", err)
	}
}

func TestEndpoint_Capacity(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"configured", 8, 8},
		{"default", 0, config.DefaultTransportConfig().BufferSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := memory.NewBus(context.Background(), memory.Config{BufferSize: tt.size})
			defer bus.Close()

			ep, err := bus.Endpoint("alpha")
			if err != nil {
				t.Fatal(err)
			}
			if got := ep.Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInbox(t *testing.T) {
	in := memory.NewInbox[int](context.Background(), 2)

	if in.BufferSize() != 2 {
		t.Errorf("BufferSize = %d, want 2", in.BufferSize())
	}

	if err := in.Send(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if in.QueueLength() != 1 {
		t.Errorf("QueueLength = %d, want 1", in.QueueLength())
	}

	v, ok := in.TryReceive()
	if !ok || v != 1 {
		t.Errorf("TryReceive = %d, %v, want 1, true", v, ok)
	}
	if _, ok := in.TryReceive(); ok {
		t.Error("TryReceive on empty inbox returned ok")
	}

	in.Close()
	if !in.IsClosed() {
		t.Error("IsClosed = false after Close")
	}
	if err := in.Send(context.Background(), 2); !errors.Is(err, memory.ErrClosed) {
		t.Errorf("Send after Close error = %v, want ErrClosed", err)
	}
}

func TestInbox_SendRespectsContext(t *testing.T) {
	in := memory.NewInbox[int](context.Background(), 1)
	in.Send(context.Background(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := in.Send(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send on full inbox error = %v, want DeadlineExceeded", err)
	}
}
