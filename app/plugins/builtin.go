package plugins

import (
	"github.com/kilianp07/dockyard/config"
	"github.com/kilianp07/dockyard/core/docking/logging"
)

func init() {
	RegisterLogStore("jsonl", func(lc config.LoggingConfig) (logging.LogStore, error) {
		return logging.NewJSONLStore(lc.Path)
	})
	RegisterLogStore("rotating", func(lc config.LoggingConfig) (logging.LogStore, error) {
		return logging.NewRotatingJSONLStore(lc.Path, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
	})
	RegisterLogStore("sqlite", func(lc config.LoggingConfig) (logging.LogStore, error) {
		return logging.NewSQLiteStore(lc.Path)
	})
}
