// Package connect carries courier envelopes over Connect unary calls. Each
// endpoint serves a single procedure and calls the same procedure on its
// peers. Envelopes travel as google.protobuf.Struct so that no generated code
// is needed.
package connect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/envelope"
)

const (
	ServiceName      = "courier.v1.EnvelopeService"
	DeliverProcedure = "/" + ServiceName + "/Deliver"
)

var (
	ErrUnknownPeer = errors.New("unknown peer")
	ErrNoReceiver  = errors.New("no receiver installed")
)

type deliverClient = connect.Client[structpb.Struct, emptypb.Empty]

// Options configures a Transport.
type Options struct {
	// Peers maps endpoint names to base URLs, e.g. "http://127.0.0.1:8080".
	Peers      map[string]string
	HTTPClient connect.HTTPClient
	Logger     *slog.Logger
}

// FromTransport builds Options from the transport section of a courier
// config.
func FromTransport(cfg config.TransportConfig, logger *slog.Logger) Options {
	return Options{Peers: cfg.Peers, Logger: logger}
}

// Transport is one named endpoint reachable over HTTP.
type Transport struct {
	name       string
	httpClient connect.HTTPClient
	logger     *slog.Logger

	peers map[string]*deliverClient
	mutex sync.RWMutex

	receiver atomic.Pointer[func(envelope.Envelope)]
}

func New(name string, opts Options) *Transport {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := &Transport{
		name:       name,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		peers:      make(map[string]*deliverClient),
	}
	for peer, url := range opts.Peers {
		t.AddPeer(peer, url)
	}
	return t
}

func (t *Transport) Name() string {
	return t.name
}

// AddPeer registers or replaces the base URL of a peer.
func (t *Transport) AddPeer(name, baseURL string) {
	client := connect.NewClient[structpb.Struct, emptypb.Empty](
		t.httpClient,
		strings.TrimRight(baseURL, "/")+DeliverProcedure,
	)

	t.mutex.Lock()
	t.peers[name] = client
	t.mutex.Unlock()
}

// RemovePeer forgets a peer.
func (t *Transport) RemovePeer(name string) {
	t.mutex.Lock()
	delete(t.peers, name)
	t.mutex.Unlock()
}

// Peers lists known peer names, sorted.
func (t *Transport) Peers() []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	names := make([]string, 0, len(t.peers))
	for name := range t.peers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler returns the path and handler serving the Deliver procedure.
func (t *Transport) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	return DeliverProcedure, connect.NewUnaryHandler(DeliverProcedure, t.deliver, opts...)
}

// Mount registers the Deliver procedure on r.
func (t *Transport) Mount(r chi.Router, opts ...connect.HandlerOption) {
	path, handler := t.Handler(opts...)
	r.Handle(path, handler)
}

// Emit delivers env to its addressee, or to every peer when it has none. It
// matches messenger.Emitter.
func (t *Transport) Emit(ctx context.Context, env envelope.Envelope) error {
	msg, err := toStruct(env)
	if err != nil {
		return err
	}

	if env.To != "" {
		t.mutex.RLock()
		client, exists := t.peers[env.To]
		t.mutex.RUnlock()

		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownPeer, env.To)
		}
		if _, err := client.CallUnary(ctx, connect.NewRequest(msg)); err != nil {
			return fmt.Errorf("failed to deliver to %s: %w", env.To, err)
		}
		return nil
	}

	t.mutex.RLock()
	targets := make(map[string]*deliverClient, len(t.peers))
	for name, client := range t.peers {
		targets[name] = client
	}
	t.mutex.RUnlock()

	var errs []error
	for name, client := range targets {
		if _, err := client.CallUnary(ctx, connect.NewRequest(msg)); err != nil {
			t.logger.WarnContext(
				ctx,
				"failed to deliver broadcast",
				slog.String("from", t.name),
				slog.String("to", name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Receive installs the inbound handler. It matches messenger.Receptor.
func (t *Transport) Receive(handler func(envelope.Envelope)) {
	t.receiver.Store(&handler)
}

func (t *Transport) deliver(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[emptypb.Empty], error) {
	receiver := t.receiver.Load()
	if receiver == nil {
		return nil, connect.NewError(connect.CodeUnavailable, ErrNoReceiver)
	}

	env, err := fromStruct(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if env.From == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("envelope has no sender"))
	}
	if env.To != "" && env.To != t.name {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("envelope addressed to %s", env.To))
	}

	t.logger.DebugContext(
		ctx,
		"envelope delivered",
		slog.String("endpoint", t.name),
		slog.String("from", env.From),
		slog.String("head", env.Head),
	)

	(*receiver)(env)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func toStruct(env envelope.Envelope) (*structpb.Struct, error) {
	data, err := envelope.Encode(env)
	if err != nil {
		return nil, err
	}

	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return msg, nil
}

func fromStruct(msg *structpb.Struct) (envelope.Envelope, error) {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope.Decode(data)
}
