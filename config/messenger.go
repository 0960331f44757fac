package config

import (
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/courier/paradigm"
)

// DefaultTimeout is the request timeout used when none is configured.
const DefaultTimeout = 2000 * time.Millisecond

// MessengerConfig defines configuration for a Messenger instance.
type MessengerConfig struct {
	// Identity; empty lets the messenger generate a name
	Name string `json:"name,omitempty"`

	// Request settings
	Timeout  Duration          `json:"timeout,omitempty"`
	Paradigm paradigm.Paradigm `json:"paradigm,omitempty"`

	// Observability
	Observer string       `json:"observer,omitempty"`
	Logger   *slog.Logger `json:"-"`
}

// DefaultMessengerConfig returns a MessengerConfig with sensible defaults.
func DefaultMessengerConfig() MessengerConfig {
	return MessengerConfig{
		Timeout:  Duration(DefaultTimeout),
		Paradigm: paradigm.Promise,
		Observer: "slog",
		Logger:   slog.Default(),
	}
}

func (c *MessengerConfig) Merge(source *MessengerConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}

	if source.Paradigm != "" {
		c.Paradigm = source.Paradigm
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}
}
