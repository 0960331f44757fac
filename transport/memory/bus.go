// Package memory is an in-process transport. A Bus connects Endpoints by
// name; each Endpoint provides the Emit and Receive functions a messenger
// needs:
//
//	bus := memory.NewBus(ctx, memory.Config{})
//	ep, _ := bus.Endpoint("alpha")
//	m, _ := messenger.New(config.MessengerConfig{Name: ep.Name()}, ep.Emit, ep.Receive)
//
// Endpoint and messenger names must agree for addressed envelopes to arrive.
//
// Each endpoint handles its envelopes on a single goroutine. Handlers may
// call back into their messenger, but must not block on a reply delivered
// to the same endpoint; await it from another goroutine instead.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rs/xid"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/envelope"
)

// Config sizes endpoint inboxes. Zero values take the transport defaults.
type Config struct {
	BufferSize int
	Logger     *slog.Logger
}

// FromTransport builds a Config from the transport section of a courier
// config.
func FromTransport(cfg config.TransportConfig, logger *slog.Logger) Config {
	return Config{BufferSize: cfg.BufferSize, Logger: logger}
}

// Bus routes envelopes between its endpoints.
type Bus struct {
	endpoints map[string]*Endpoint
	mutex     sync.RWMutex

	bufferSize int
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewBus(ctx context.Context, cfg Config) *Bus {
	defaults := config.DefaultTransportConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	busCtx, cancel := context.WithCancel(ctx)
	return &Bus{
		endpoints:  make(map[string]*Endpoint),
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		ctx:        busCtx,
		cancel:     cancel,
	}
}

// Endpoint attaches a new endpoint. An empty name is replaced by a generated
// one.
func (b *Bus) Endpoint(name string) (*Endpoint, error) {
	if name == "" {
		name = "endpoint-" + xid.New().String()
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if _, exists := b.endpoints[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	ep := &Endpoint{
		name:  name,
		bus:   b,
		inbox: NewInbox[envelope.Envelope](b.ctx, b.bufferSize),
		done:  make(chan struct{}),
	}
	b.endpoints[name] = ep

	b.logger.Debug("endpoint attached", slog.String("endpoint", name))
	return ep, nil
}

// Names lists attached endpoints, sorted.
func (b *Bus) Names() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	names := make([]string, 0, len(b.endpoints))
	for name := range b.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close detaches every endpoint and stops their pumps.
func (b *Bus) Close() {
	b.mutex.Lock()
	endpoints := make([]*Endpoint, 0, len(b.endpoints))
	for _, ep := range b.endpoints {
		endpoints = append(endpoints, ep)
	}
	b.endpoints = make(map[string]*Endpoint)
	b.mutex.Unlock()

	b.cancel()
	for _, ep := range endpoints {
		ep.inbox.Close()
	}
}

func (b *Bus) detach(name string) {
	b.mutex.Lock()
	delete(b.endpoints, name)
	b.mutex.Unlock()
}

// route delivers env from sender: to env.To when set, else to every other
// endpoint.
func (b *Bus) route(ctx context.Context, sender string, env envelope.Envelope) error {
	b.mutex.RLock()
	var targets []*Endpoint
	if env.To != "" {
		ep, exists := b.endpoints[env.To]
		if !exists {
			b.mutex.RUnlock()
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, env.To)
		}
		targets = append(targets, ep)
	} else {
		for name, ep := range b.endpoints {
			if name != sender {
				targets = append(targets, ep)
			}
		}
	}
	b.mutex.RUnlock()

	delivered := 0
	for _, ep := range targets {
		if err := ep.inbox.Send(ctx, env); err != nil {
			if env.To != "" {
				return fmt.Errorf("failed to deliver to %s: %w", ep.name, err)
			}
			b.logger.WarnContext(
				ctx,
				"failed to deliver broadcast",
				slog.String("from", sender),
				slog.String("to", ep.name),
				slog.String("error", err.Error()),
			)
			continue
		}
		delivered++
	}

	b.logger.DebugContext(
		ctx,
		"envelope routed",
		slog.String("from", sender),
		slog.String("head", env.Head),
		slog.Int("recipients", len(targets)),
		slog.Int("delivered", delivered),
	)
	return nil
}
