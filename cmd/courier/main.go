package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tailored-agentic-units/courier/config"
	"github.com/tailored-agentic-units/courier/messenger"
	"github.com/tailored-agentic-units/courier/observability"
	"github.com/tailored-agentic-units/courier/paradigm"
	"github.com/tailored-agentic-units/courier/promise"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to courier config JSON file")
		envFile     = flag.String("env", ".env", "Path to a .env file with COURIER_* overrides")
		transport   = flag.String("transport", "", "Transport: memory, nats or connect (overrides config)")
		paradigmArg = flag.String("paradigm", "", "Paradigm of the requesting messenger (overrides config)")
		timeout     = flag.Duration("timeout", 0, "Request timeout (overrides config)")
		head        = flag.String("head", "ping", "Head of the demo request")
		body        = flag.String("body", "hello", "Body of the demo request")
		metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address and keep running")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}

	if *transport != "" {
		cfg.Transport.Kind = *transport
	}
	if *paradigmArg != "" {
		p, err := paradigm.Parse(*paradigmArg)
		if err != nil {
			log.Fatalf("Invalid paradigm: %v", err)
		}
		cfg.Messenger.Paradigm = p
	}
	if *timeout > 0 {
		cfg.Messenger.Timeout = config.Duration(*timeout)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	cfg.Messenger.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	links, err := openLinks(ctx, cfg.Transport, logger)
	if err != nil {
		log.Fatalf("Failed to open %s transport: %v", cfg.Transport.Kind, err)
	}
	defer links.close()

	events := observability.NewMetricsObserver("courier")
	observer := observability.NewMultiObserver(observability.NewSlogObserver(logger), events)

	requester := cfg.Messenger
	requester.Name = links.requester.name
	alpha, err := messenger.New(requester, links.requester.emit, links.requester.receive, messenger.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create requester: %v", err)
	}

	responder := cfg.Messenger
	responder.Name = links.responder.name
	responder.Paradigm = paradigm.Promise
	beta, err := messenger.New(responder, links.responder.emit, links.responder.receive, messenger.WithObserver(observer))
	if err != nil {
		log.Fatalf("Failed to create responder: %v", err)
	}

	if _, err := beta.On("*", func(body any, reply messenger.Reply) {
		reply(fmt.Sprintf("pong: %v", body))
	}); err != nil {
		log.Fatalf("Failed to register responder: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(messenger.NewCollector(alpha, beta), events)

	start := time.Now()
	reply, err := call(alpha, *head, *body)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}

	fmt.Printf("Transport: %s\n", cfg.Transport.Kind)
	fmt.Printf("Paradigm:  %s\n", alpha.Paradigm())
	fmt.Printf("Reply:     %v\n", reply)
	fmt.Printf("Elapsed:   %v\n", time.Since(start).Round(time.Microsecond))

	if *metricsAddr != "" {
		serveMetrics(ctx, *metricsAddr, registry, logger)
	}

	alpha.Shoot()
	beta.Shoot()
}

// call issues one request through the requester's paradigm and waits for its
// outcome.
func call(m *messenger.Messenger, head string, body any) (any, error) {
	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	ok := func(value any) { done <- outcome{value: value} }
	fail := func(reason any) { done <- outcome{err: promise.Reason(reason)} }

	switch m.Paradigm() {
	case paradigm.Promise:
		m.Call(head, body).(paradigm.Thenable).Then(ok, fail)
	case paradigm.Modern:
		m.Call(head, body, func(err, value any) {
			if err != nil {
				fail(err)
				return
			}
			ok(value)
		})
	case paradigm.Classical:
		m.Call(head, body, ok, fail)
	case paradigm.Baroque:
		m.Call(head, body, fail, ok)
	}

	res := <-done
	return res.value, res.err
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry, logger *slog.Logger) {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", slog.String("error", err.Error()))
	}
}
