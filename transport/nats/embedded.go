package nats

import (
	"errors"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// EmbeddedConfig holds options for running an embedded NATS server.
type EmbeddedConfig struct {
	InProcess     bool
	EnableLogging bool
	ServerName    string
	Port          int
	ReadyTimeout  time.Duration
}

// RunEmbeddedServer starts a NATS server inside the process and returns a
// client connection to it. With InProcess set the server opens no listener
// and clients connect through Connect.
func RunEmbeddedServer(cfg EmbeddedConfig) (*nats.Conn, *server.Server, error) {
	if cfg.ServerName == "" {
		cfg.ServerName = "courier_embedded"
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 5 * time.Second
	}

	opts := &server.Options{
		ServerName: cfg.ServerName,
		DontListen: cfg.InProcess,
		Port:       cfg.Port,
		NoSigs:     true,
	}
	if !cfg.InProcess && cfg.Port == 0 {
		opts.Port = server.RANDOM_PORT
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, nil, err
	}
	if cfg.EnableLogging {
		ns.ConfigureLogger()
	}
	go ns.Start()
	if !ns.ReadyForConnections(cfg.ReadyTimeout) {
		ns.Shutdown()
		return nil, nil, errors.New("NATS server timeout")
	}

	nc, err := Connect(ns, cfg.InProcess)
	if err != nil {
		ns.Shutdown()
		return nil, nil, err
	}
	return nc, ns, nil
}

// Connect opens another client connection to an embedded server.
func Connect(ns *server.Server, inProcess bool) (*nats.Conn, error) {
	var opts []nats.Option
	if inProcess {
		opts = append(opts, nats.InProcessServer(ns))
	}
	return nats.Connect(ns.ClientURL(), opts...)
}
