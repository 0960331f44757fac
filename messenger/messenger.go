package messenger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/envelope"
	"github.com/tailored-agentic-units/courier/forge"
	"github.com/tailored-agentic-units/courier/observability"
	"github.com/tailored-agentic-units/courier/paradigm"
	"github.com/tailored-agentic-units/courier/promise"
)

// Emitter hands an outgoing envelope to the transport. The addressee, if any,
// is env.To.
type Emitter func(ctx context.Context, env envelope.Envelope) error

// Receptor registers the function the transport calls for every inbound
// envelope. A messenger calls it exactly once, during New.
type Receptor func(handler func(envelope.Envelope))

type pendingCall struct {
	id       uint64
	head     string
	deferred *promise.Deferred
	timer    *time.Timer
}

// Messenger exchanges envelopes with peers over an Emitter and a Receptor,
// correlating requests with their replies.
type Messenger struct {
	name     string
	timeout  time.Duration
	paradigm paradigm.Paradigm

	emitter Emitter
	call    paradigm.Func

	mu        sync.Mutex
	counter   uint64
	calls     map[uint64]*pendingCall
	listeners *registry
	shot      bool

	logger   *slog.Logger
	observer observability.Observer
	metrics  *Metrics
}

// Option configures a Messenger.
type Option func(*options)

type options struct {
	observer observability.Observer
	namer    Namer
	metrics  *Metrics
}

// WithObserver replaces the observer named in the config.
func WithObserver(observer observability.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithNamer sets the name generator used when the config has no name.
func WithNamer(namer Namer) Option {
	return func(o *options) {
		o.namer = namer
	}
}

// WithMetrics shares a Metrics instance, e.g. across messengers.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// New creates a Messenger and registers its dispatcher with receptor.
// Zero-valued config fields fall back to DefaultMessengerConfig.
func New(cfg config.MessengerConfig, emitter Emitter, receptor Receptor, opts ...Option) (*Messenger, error) {
	if emitter == nil || receptor == nil {
		return nil, ErrInvalidTransport
	}

	merged := config.DefaultMessengerConfig()
	merged.Merge(&cfg)

	if err := paradigm.Check(merged.Paradigm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	o := options{namer: defaultNamer}
	for _, opt := range opts {
		opt(&o)
	}
	if o.namer == nil {
		o.namer = defaultNamer
	}

	if o.observer == nil {
		obs, err := observability.Resolve(merged.Observer, merged.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		o.observer = obs
	}

	if o.metrics == nil {
		o.metrics = NewMetrics()
	}

	name := merged.Name
	if name == "" {
		name = o.namer()
	}

	m := &Messenger{
		name:      name,
		timeout:   merged.Timeout.Std(),
		paradigm:  merged.Paradigm,
		emitter:   emitter,
		calls:     make(map[uint64]*pendingCall),
		listeners: newRegistry(),
		logger:    merged.Logger,
		observer:  o.observer,
		metrics:   o.metrics,
	}

	if m.paradigm == paradigm.Promise {
		m.call = m.requestFunc
	} else {
		call, err := forge.Build(m.requestFunc, paradigm.Promise, m.paradigm)
		if err != nil {
			return nil, err
		}
		m.call = call
	}

	receptor(m.receive)

	m.logger.Debug(
		"messenger created",
		slog.String("messenger", m.name),
		slog.String("paradigm", m.paradigm.String()),
		slog.Duration("timeout", m.timeout),
	)

	return m, nil
}

func (m *Messenger) Name() string                { return m.name }
func (m *Messenger) Timeout() time.Duration      { return m.timeout }
func (m *Messenger) Paradigm() paradigm.Paradigm { return m.paradigm }

// Pending returns the number of requests awaiting a reply.
func (m *Messenger) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Listeners returns the number of registered listeners.
func (m *Messenger) Listeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listeners.len()
}

func (m *Messenger) IsShot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shot
}

func (m *Messenger) Metrics() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// Send broadcasts a fire-and-forget envelope.
func (m *Messenger) Send(ctx context.Context, head string, body any) error {
	return m.send(ctx, "", head, body)
}

// SendTo sends a fire-and-forget envelope to one peer.
func (m *Messenger) SendTo(ctx context.Context, to, head string, body any) error {
	if to == "" {
		return fmt.Errorf("%w: empty addressee", ErrInvalidArgument)
	}
	return m.send(ctx, to, head, body)
}

func (m *Messenger) send(ctx context.Context, to, head string, body any) error {
	if m.IsShot() {
		return ErrShot
	}
	if !envelope.ValidHead(head) {
		return fmt.Errorf("%w: invalid head %q", ErrInvalidArgument, head)
	}

	env := envelope.New(m.name, head, body).To(to).Build()
	if err := m.emitter(ctx, env); err != nil {
		return fmt.Errorf("failed to send %s: %w", head, err)
	}

	m.metrics.RecordSent(1)
	m.observe(ctx, EventSend, observability.LevelVerbose, map[string]any{
		"head": head,
		"to":   to,
	})
	return nil
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the messenger's default timeout for one request. Zero
// keeps the default.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
	}
}

// Request broadcasts a request and returns a promise for the reply body. The
// promise rejects with a *TimeoutError if no reply arrives in time, or with
// ErrShot if the messenger is shot first.
func (m *Messenger) Request(ctx context.Context, head string, body any, opts ...RequestOption) (*promise.Promise, error) {
	return m.request(ctx, "", head, body, opts...)
}

// RequestTo sends a request to one peer.
func (m *Messenger) RequestTo(ctx context.Context, to, head string, body any, opts ...RequestOption) (*promise.Promise, error) {
	if to == "" {
		return nil, fmt.Errorf("%w: empty addressee", ErrInvalidArgument)
	}
	return m.request(ctx, to, head, body, opts...)
}

func (m *Messenger) request(ctx context.Context, to, head string, body any, opts ...RequestOption) (*promise.Promise, error) {
	o := requestOptions{timeout: m.timeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout == 0 {
		o.timeout = m.timeout
	}

	m.mu.Lock()
	if m.shot {
		m.mu.Unlock()
		return nil, ErrShot
	}
	if !envelope.ValidHead(head) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: invalid head %q", ErrInvalidArgument, head)
	}
	if o.timeout <= 0 {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: negative timeout %v", ErrInvalidArgument, o.timeout)
	}

	m.counter++
	call := &pendingCall{
		id:       m.counter,
		head:     head,
		deferred: promise.NewDeferred(),
	}
	timeout := o.timeout
	call.timer = time.AfterFunc(timeout, func() { m.expire(call.id, timeout) })
	m.calls[call.id] = call
	m.mu.Unlock()

	m.metrics.RecordPending(1)

	env := envelope.New(m.name, head, body).To(to).ID(call.id).Build()
	if err := m.emitter(ctx, env); err != nil {
		if m.forget(call.id) {
			call.timer.Stop()
		}
		return nil, fmt.Errorf("failed to send request %s: %w", head, err)
	}

	m.metrics.RecordSent(1)
	m.metrics.RecordRequest(1)
	m.observe(ctx, EventRequest, observability.LevelVerbose, map[string]any{
		"head":    head,
		"to":      to,
		"id":      call.id,
		"timeout": timeout.String(),
	})

	return call.deferred.Promise, nil
}

// forget removes a pending call and reports whether it was still pending.
func (m *Messenger) forget(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calls[id]; !ok {
		return false
	}
	delete(m.calls, id)
	m.metrics.RecordPending(-1)
	return true
}

func (m *Messenger) expire(id uint64, after time.Duration) {
	m.mu.Lock()
	call, ok := m.calls[id]
	if ok {
		delete(m.calls, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	m.metrics.RecordPending(-1)
	m.metrics.RecordTimeout(1)
	call.deferred.Reject(&TimeoutError{ID: id, Head: call.head, After: after})

	m.observe(context.Background(), EventTimeout, observability.LevelWarning, map[string]any{
		"head":  call.head,
		"id":    id,
		"after": after.String(),
	})
}

// Call issues a request shaped by the messenger's paradigm. Arguments are
// head, body and an optional timeout (time.Duration, or an int number of
// milliseconds), followed by the paradigm's callbacks. In the promise
// paradigm the result is a *promise.Promise; in the others it is nil.
func (m *Messenger) Call(args ...any) any {
	return m.call(args...)
}

// requestFunc is the promise-paradigm request behind Call.
func (m *Messenger) requestFunc(args ...any) any {
	head, body, opts, err := requestArgs(args)
	if err != nil {
		return promise.Reject(err)
	}

	p, err := m.Request(context.Background(), head, body, opts...)
	if err != nil {
		return promise.Reject(err)
	}
	return p
}

func requestArgs(args []any) (string, any, []RequestOption, error) {
	if len(args) == 0 || len(args) > 3 {
		return "", nil, nil, fmt.Errorf("%w: expected head, body and an optional timeout", ErrInvalidArgument)
	}

	head, ok := args[0].(string)
	if !ok {
		return "", nil, nil, fmt.Errorf("%w: head must be a string, got %T", ErrInvalidArgument, args[0])
	}

	var body any
	if len(args) > 1 {
		body = args[1]
	}

	var opts []RequestOption
	if len(args) > 2 {
		switch t := args[2].(type) {
		case time.Duration:
			opts = append(opts, WithTimeout(t))
		case int:
			opts = append(opts, WithTimeout(time.Duration(t)*time.Millisecond))
		default:
			return "", nil, nil, fmt.Errorf("%w: timeout must be a duration, got %T", ErrInvalidArgument, args[2])
		}
	}

	return head, body, opts, nil
}

// On registers handler for head; "*" matches every head.
func (m *Messenger) On(head string, handler Handler) (*Listener, error) {
	return m.bind("", head, handler, false)
}

// OnFrom registers handler for envelopes from one sender.
func (m *Messenger) OnFrom(from, head string, handler Handler) (*Listener, error) {
	return m.bind(from, head, handler, false)
}

// Once registers handler for the next matching envelope only.
func (m *Messenger) Once(head string, handler Handler) (*Listener, error) {
	return m.bind("", head, handler, true)
}

// OnceFrom is Once filtered by sender.
func (m *Messenger) OnceFrom(from, head string, handler Handler) (*Listener, error) {
	return m.bind(from, head, handler, true)
}

func (m *Messenger) bind(from, head string, handler Handler, once bool) (*Listener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shot {
		return nil, ErrShot
	}
	if head == "" {
		return nil, fmt.Errorf("%w: empty head", ErrInvalidArgument)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidArgument)
	}

	l := &Listener{head: head, from: from, once: once, handler: handler}
	m.listeners.add(l)
	return l, nil
}

// Off unregisters listeners:
//
//   - head and l: remove l from head
//   - l only: remove l from every head
//   - head only: remove every listener of head
//
// ErrUnknownListener is returned when nothing matched.
func (m *Messenger) Off(head string, l *Listener) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shot {
		return ErrShot
	}

	var removed bool
	switch {
	case head != "" && l != nil:
		removed = m.listeners.remove(head, l)
	case l != nil:
		removed = m.listeners.removeEverywhere(l)
	case head != "":
		removed = m.listeners.drop(head)
	default:
		return fmt.Errorf("%w: off needs a head or a listener", ErrInvalidArgument)
	}

	if !removed {
		return fmt.Errorf("%w: head %q", ErrUnknownListener, head)
	}
	return nil
}

// Shoot tears the messenger down: listeners are discarded and pending
// requests reject with ErrShot. Every later operation fails with ErrShot.
func (m *Messenger) Shoot() error {
	m.mu.Lock()
	if m.shot {
		m.mu.Unlock()
		return ErrAlreadyShot
	}
	m.shot = true
	calls := m.calls
	m.calls = make(map[uint64]*pendingCall)
	m.listeners.reset()
	m.mu.Unlock()

	for _, call := range calls {
		call.timer.Stop()
		m.metrics.RecordPending(-1)
		call.deferred.Reject(fmt.Errorf("%w: request %d (%s) abandoned", ErrShot, call.id, call.head))
	}

	m.observe(context.Background(), EventShoot, observability.LevelInfo, map[string]any{
		"abandoned": len(calls),
	})
	return nil
}

// receive is registered with the receptor.
func (m *Messenger) receive(env envelope.Envelope) {
	ctx := context.Background()

	m.mu.Lock()
	if m.shot {
		m.mu.Unlock()
		m.drop(ctx, env, "shot")
		return
	}

	p := plan(m.listeners, m.hasPending, m.name, env)
	for _, l := range p.expire {
		m.listeners.remove(l.head, l)
	}
	var call *pendingCall
	if p.settle != 0 {
		call = m.calls[p.settle]
		delete(m.calls, p.settle)
	}
	m.mu.Unlock()

	m.metrics.RecordReceived(1)

	if p.empty() {
		m.drop(ctx, env, "unmatched")
		return
	}

	if len(p.invoke) > 0 {
		m.observe(ctx, EventDispatch, observability.LevelVerbose, map[string]any{
			"head":      env.Head,
			"from":      env.From,
			"listeners": len(p.invoke),
		})
	}
	for _, l := range p.invoke {
		l.handler(env.Body, m.replier(env))
	}

	if call != nil {
		call.timer.Stop()
		m.metrics.RecordPending(-1)
		m.metrics.RecordReply(1)
		call.deferred.Resolve(env.Body)
		m.observe(ctx, EventReply, observability.LevelVerbose, map[string]any{
			"head": call.head,
			"from": env.From,
			"id":   call.id,
		})
	}
}

// hasPending must be called with mu held.
func (m *Messenger) hasPending(id uint64) bool {
	_, ok := m.calls[id]
	return ok
}

func (m *Messenger) replier(env envelope.Envelope) Reply {
	return func(data any) {
		ctx := context.Background()

		if env.ID == 0 {
			m.drop(ctx, env, "reply to a message that is not a request")
			return
		}
		if m.IsShot() {
			m.drop(ctx, env, "reply after shoot")
			return
		}

		reply := envelope.NewReply(m.name, env.From, env.ID, data).Build()
		if err := m.emitter(ctx, reply); err != nil {
			m.drop(ctx, env, err.Error())
			return
		}
		m.metrics.RecordSent(1)
	}
}

func (m *Messenger) drop(ctx context.Context, env envelope.Envelope, reason string) {
	m.metrics.RecordDropped(1)
	m.observe(ctx, EventDrop, observability.LevelVerbose, map[string]any{
		"head":   env.Head,
		"from":   env.From,
		"id":     env.ID,
		"reason": reason,
	})
}

func (m *Messenger) observe(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	m.observer.OnEvent(ctx, observability.NewEvent(typ, level, m.name, data))
}
