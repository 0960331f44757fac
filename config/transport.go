package config

// Transport kinds understood by the courier command.
const (
	TransportMemory  = "memory"
	TransportNATS    = "nats"
	TransportConnect = "connect"
)

// TransportConfig selects and configures the transport a messenger runs on.
type TransportConfig struct {
	Kind string `json:"kind,omitempty"`

	// In-memory bus
	BufferSize int `json:"buffer_size,omitempty"`

	// NATS; an empty URL starts an embedded server
	NATSURL       string `json:"nats_url,omitempty"`
	SubjectPrefix string `json:"subject_prefix,omitempty"`

	// Connect over HTTP
	Listen string            `json:"listen,omitempty"`
	Peers  map[string]string `json:"peers,omitempty"`
}

// DefaultTransportConfig returns the in-memory transport configuration.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Kind:          TransportMemory,
		BufferSize:    100,
		SubjectPrefix: "courier",
		Listen:        "127.0.0.1:0",
	}
}

func (c *TransportConfig) Merge(source *TransportConfig) {
	if source.Kind != "" {
		c.Kind = source.Kind
	}

	if source.BufferSize > 0 {
		c.BufferSize = source.BufferSize
	}

	if source.NATSURL != "" {
		c.NATSURL = source.NATSURL
	}

	if source.SubjectPrefix != "" {
		c.SubjectPrefix = source.SubjectPrefix
	}

	if source.Listen != "" {
		c.Listen = source.Listen
	}

	if len(source.Peers) > 0 {
		c.Peers = source.Peers
	}
}
