// Package config provides configuration structures for messengers and the
// transports they run on.
//
// # Defaults
//
//	cfg := config.DefaultConfig()
//	// Messenger.Timeout:  2s
//	// Messenger.Paradigm: promise
//	// Messenger.Observer: "slog"
//	// Transport.Kind:     "memory"
//
// # Loading
//
// LoadConfig reads a JSON file, validates it against the embedded schema and
// merges it over the defaults:
//
//	cfg, err := config.LoadConfig("courier.json")
//
// ApplyEnv then overlays COURIER_* environment variables, so that a .env file
// loaded by the caller can override the file.
//
// # Merge Semantics
//
//   - Strings: merge if source is non-empty
//   - Integers and durations: merge if source is greater than zero
//   - Pointers: merge if source is non-nil
//   - Maps: replace if source is non-empty
//
// # Durations
//
// Duration fields accept either a Go duration string ("1500ms", "2s") or a
// number of milliseconds.
package config
