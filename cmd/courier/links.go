package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/messenger"
	connecttransport "github.com/tailored-agentic-units/courier/transport/connect"
	"github.com/tailored-agentic-units/courier/transport/memory"
	natstransport "github.com/tailored-agentic-units/courier/transport/nats"
)

const (
	requesterName = "alpha"
	responderName = "beta"
)

type link struct {
	name    string
	emit    messenger.Emitter
	receive messenger.Receptor
}

type links struct {
	requester link
	responder link
	closers   []func()
}

func (l *links) close() {
	for i := len(l.closers) - 1; i >= 0; i-- {
		l.closers[i]()
	}
}

// openLinks wires a requester and a responder over the configured transport.
func openLinks(ctx context.Context, cfg config.TransportConfig, logger *slog.Logger) (*links, error) {
	switch cfg.Kind {
	case config.TransportMemory:
		return memoryLinks(ctx, cfg, logger)
	case config.TransportNATS:
		return natsLinks(cfg, logger)
	case config.TransportConnect:
		return connectLinks(cfg, logger)
	}
	return nil, fmt.Errorf("unknown transport kind: %s", cfg.Kind)
}

func memoryLinks(ctx context.Context, cfg config.TransportConfig, logger *slog.Logger) (*links, error) {
	bus := memory.NewBus(ctx, memory.FromTransport(cfg, logger))
	l := &links{closers: []func(){bus.Close}}

	alpha, err := bus.Endpoint(requesterName)
	if err != nil {
		l.close()
		return nil, err
	}
	beta, err := bus.Endpoint(responderName)
	if err != nil {
		l.close()
		return nil, err
	}

	l.requester = link{name: alpha.Name(), emit: alpha.Emit, receive: alpha.Receive}
	l.responder = link{name: beta.Name(), emit: beta.Emit, receive: beta.Receive}
	return l, nil
}

func natsLinks(cfg config.TransportConfig, logger *slog.Logger) (*links, error) {
	l := &links{}

	var (
		conn *nats.Conn
		ns   *server.Server
		err  error
	)
	if cfg.NATSURL == "" {
		conn, ns, err = natstransport.RunEmbeddedServer(natstransport.EmbeddedConfig{InProcess: true})
		if err != nil {
			return nil, err
		}
		l.closers = append(l.closers, ns.Shutdown)
		logger.Info("started embedded nats server")
	} else {
		conn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
	}
	l.closers = append(l.closers, conn.Close)

	opts := natstransport.FromTransport(cfg, logger)
	for _, name := range []string{requesterName, responderName} {
		tr, err := natstransport.New(conn, name, opts)
		if err != nil {
			l.close()
			return nil, err
		}
		l.closers = append(l.closers, func() { tr.Close() })

		lk := link{name: tr.Name(), emit: tr.Emit, receive: tr.Receive}
		if name == requesterName {
			l.requester = lk
		} else {
			l.responder = lk
		}
	}
	return l, nil
}

func connectLinks(cfg config.TransportConfig, logger *slog.Logger) (*links, error) {
	l := &links{}
	opts := connecttransport.FromTransport(cfg, logger)
	opts.HTTPClient = connecttransport.NewH2CClient()

	addrs := map[string]string{requesterName: "127.0.0.1:0", responderName: cfg.Listen}
	transports := map[string]*connecttransport.Transport{}
	urls := map[string]string{}

	for _, name := range []string{requesterName, responderName} {
		tr := connecttransport.New(name, opts)

		listener, err := net.Listen("tcp", addrs[name])
		if err != nil {
			l.close()
			return nil, err
		}

		r := chi.NewRouter()
		tr.Mount(r)
		srv := &http.Server{Handler: connecttransport.H2CHandler(r)}

		go func() {
			if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("connect server failed", slog.String("endpoint", name), slog.String("error", err.Error()))
			}
		}()
		l.closers = append(l.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		})

		transports[name] = tr
		urls[name] = "http://" + listener.Addr().String()
		logger.Info("serving connect endpoint", slog.String("endpoint", name), slog.String("url", urls[name]))
	}

	transports[requesterName].AddPeer(responderName, urls[responderName])
	transports[responderName].AddPeer(requesterName, urls[requesterName])

	for name, tr := range transports {
		lk := link{name: tr.Name(), emit: tr.Emit, receive: tr.Receive}
		if name == requesterName {
			l.requester = lk
		} else {
			l.responder = lk
		}
	}
	return l, nil
}
