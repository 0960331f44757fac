package observability

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
	}
	mutex sync.RWMutex
)

// GetObserver returns a registered observer by name. "noop" is always
// registered; "slog" resolves to the default logger unless replaced.
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	obs, exists := observers[name]
	mutex.RUnlock()

	if exists {
		return obs, nil
	}
	if name == "slog" {
		return NewSlogObserver(slog.Default()), nil
	}
	return nil, fmt.Errorf("unknown observer: %s", name)
}

// Resolve returns the named observer, building "slog" against logger so that
// per-messenger loggers are honored.
func Resolve(name string, logger *slog.Logger) (Observer, error) {
	if name == "slog" {
		mutex.RLock()
		_, replaced := observers[name]
		mutex.RUnlock()
		if !replaced {
			return NewSlogObserver(logger), nil
		}
	}
	return GetObserver(name)
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}

// Names lists registered observer names, sorted.
func Names() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	names := make([]string, 0, len(observers)+1)
	names = append(names, "slog")
	for name := range observers {
		if name != "slog" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
