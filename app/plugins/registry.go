// Package plugins maps configuration backend names to decision log stores.
package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/dockyard/config"
	"github.com/kilianp07/dockyard/core/docking/logging"
)

// LogStoreFactory builds a decision log store from its configuration.
type LogStoreFactory func(cfg config.LoggingConfig) (logging.LogStore, error)

var LogStores = map[string]LogStoreFactory{}

func RegisterLogStore(name string, f LogStoreFactory) { LogStores[name] = f }

// LogStoreNames lists the registered backends.
func LogStoreNames() []string {
	names := make([]string, 0, len(LogStores))
	for n := range LogStores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewLogStore opens the store selected by cfg.Backend. The "none" backend
// yields a nil store.
func NewLogStore(cfg config.LoggingConfig) (logging.LogStore, error) {
	if cfg.Backend == "none" {
		return nil, nil
	}
	f, ok := LogStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("plugins: unknown log store %q", cfg.Backend)
	}
	return f(cfg)
}
