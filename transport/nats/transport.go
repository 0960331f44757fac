// Package nats carries courier envelopes over NATS core subjects. Every
// transport subscribes to two subjects under a shared prefix:
//
//	<prefix>.broadcast       envelopes without an addressee
//	<prefix>.direct.<name>   envelopes addressed to name
//
// Envelopes travel as JSON.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/envelope"
)

var (
	ErrInvalidName = errors.New("invalid endpoint name")
	ErrClosed      = errors.New("transport closed")
)

// Options configures a Transport. Zero values take the defaults.
type Options struct {
	SubjectPrefix string
	Logger        *slog.Logger
}

// FromTransport builds Options from the transport section of a courier
// config.
func FromTransport(cfg config.TransportConfig, logger *slog.Logger) Options {
	return Options{SubjectPrefix: cfg.SubjectPrefix, Logger: logger}
}

// Transport is one named endpoint on a NATS connection.
type Transport struct {
	conn   *nats.Conn
	name   string
	prefix string
	logger *slog.Logger

	subs    []*nats.Subscription
	handler atomic.Pointer[func(envelope.Envelope)]

	closeOnce sync.Once
	closed    atomic.Bool
}

// New subscribes name's subjects on conn. Envelopes arriving before Receive
// is called are discarded.
func New(conn *nats.Conn, name string, opts Options) (*Transport, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if opts.SubjectPrefix == "" {
		opts.SubjectPrefix = config.DefaultTransportConfig().SubjectPrefix
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := &Transport{
		conn:   conn,
		name:   name,
		prefix: opts.SubjectPrefix,
		logger: opts.Logger,
	}

	for _, subject := range []string{t.broadcastSubject(), t.directSubject(name)} {
		sub, err := conn.Subscribe(subject, t.deliver)
		if err != nil {
			t.unsubscribe()
			return nil, fmt.Errorf("failed to subscribe %s: %w", subject, err)
		}
		t.subs = append(t.subs, sub)
	}

	if err := conn.Flush(); err != nil {
		t.unsubscribe()
		return nil, fmt.Errorf("failed to flush subscriptions: %w", err)
	}

	t.logger.Debug(
		"nats transport ready",
		slog.String("endpoint", name),
		slog.String("prefix", t.prefix),
	)
	return t, nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, ". *>\t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (t *Transport) Name() string {
	return t.name
}

func (t *Transport) broadcastSubject() string {
	return t.prefix + ".broadcast"
}

func (t *Transport) directSubject(name string) string {
	return t.prefix + ".direct." + name
}

// Emit publishes env. It matches messenger.Emitter.
func (t *Transport) Emit(ctx context.Context, env envelope.Envelope) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := t.broadcastSubject()
	if env.To != "" {
		if err := validName(env.To); err != nil {
			return err
		}
		subject = t.directSubject(env.To)
	}

	data, err := envelope.Encode(env)
	if err != nil {
		return err
	}

	if err := t.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Receive installs the inbound handler. It matches messenger.Receptor.
func (t *Transport) Receive(handler func(envelope.Envelope)) {
	t.handler.Store(&handler)
}

func (t *Transport) deliver(msg *nats.Msg) {
	handler := t.handler.Load()
	if handler == nil || t.closed.Load() {
		return
	}

	env, err := envelope.Decode(msg.Data)
	if err != nil {
		t.logger.Warn(
			"discarding malformed envelope",
			slog.String("endpoint", t.name),
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
		return
	}

	if msg.Subject == t.broadcastSubject() && env.From == t.name {
		return
	}

	(*handler)(env)
}

// Close unsubscribes. The connection stays open.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		err = t.unsubscribe()
	})
	return err
}

func (t *Transport) unsubscribe() error {
	var errs []error
	for _, sub := range t.subs {
		if err := sub.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	t.subs = nil
	return errors.Join(errs...)
}
