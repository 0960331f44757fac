package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tailored-agentic-units/courier/paradigm"
)

//go:embed schema.json
var schemaSource string

// Config holds the messenger and transport sections of a courier setup.
type Config struct {
	Messenger MessengerConfig `json:"messenger"`
	Transport TransportConfig `json:"transport"`
}

// DefaultConfig returns a Config with defaults for every section.
func DefaultConfig() Config {
	return Config{
		Messenger: DefaultMessengerConfig(),
		Transport: DefaultTransportConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Messenger.Merge(&source.Messenger)
	c.Transport.Merge(&source.Transport)
}

// Validate checks the values a JSON schema cannot express.
func (c *Config) Validate() error {
	if err := paradigm.Check(c.Messenger.Paradigm); err != nil {
		return fmt.Errorf("messenger.paradigm: %w", err)
	}
	if c.Messenger.Timeout <= 0 {
		return fmt.Errorf("messenger.timeout must be positive")
	}
	switch c.Transport.Kind {
	case TransportMemory, TransportNATS, TransportConnect:
	default:
		return fmt.Errorf("unknown transport kind: %s", c.Transport.Kind)
	}
	return nil
}

// LoadConfig reads a JSON config file, validates it against the embedded
// schema, merges it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for an in-memory document.
func ParseConfig(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Merge(&loaded)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func validateSchema(data []byte) error {
	schema, err := jsonschema.CompileString("courier.schema.json", schemaSource)
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvName      = "COURIER_NAME"
	EnvTimeout   = "COURIER_TIMEOUT"
	EnvParadigm  = "COURIER_PARADIGM"
	EnvTransport = "COURIER_TRANSPORT"
	EnvNATSURL   = "COURIER_NATS_URL"
	EnvListen    = "COURIER_LISTEN"
)

// ApplyEnv overlays COURIER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var overlay Config

	overlay.Messenger.Name = os.Getenv(EnvName)
	overlay.Messenger.Paradigm = paradigm.Paradigm(os.Getenv(EnvParadigm))
	overlay.Transport.Kind = os.Getenv(EnvTransport)
	overlay.Transport.NATSURL = os.Getenv(EnvNATSURL)
	overlay.Transport.Listen = os.Getenv(EnvListen)

	if raw := os.Getenv(EnvTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		overlay.Messenger.Timeout = Duration(d)
	}

	c.Merge(&overlay)
	return nil
}
