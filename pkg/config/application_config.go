package config

import (
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/core/storage/dbconfig"
	"go.uber.org/zap/zapcore"
)

// ApplicationConfiguration holds the settings of the tool.
type ApplicationConfiguration struct {
	LogLevel        string                   `yaml:"LogLevel"`
	LogPath         string                   `yaml:"LogPath"`
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	UniTrie         UniTrie                  `yaml:"UniTrie"`
	Pprof           BasicService             `yaml:"Pprof"`
	Prometheus      BasicService             `yaml:"Prometheus"`
}

// UniTrie contains trie-specific settings.
type UniTrie struct {
	// NodeCacheSize is the number of decoded nodes kept in memory, 0
	// disables the cache.
	NodeCacheSize int `yaml:"NodeCacheSize"`
}

// Validate checks ApplicationConfiguration for internal consistency and returns
// an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	if len(a.LogLevel) > 0 {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("invalid LogLevel: %w", err)
		}
	}
	switch a.DBConfiguration.Type {
	case dbconfig.InMemoryDB, dbconfig.LevelDB, dbconfig.BoltDB:
	default:
		return fmt.Errorf("unknown DB type: %q", a.DBConfiguration.Type)
	}
	if a.UniTrie.NodeCacheSize < 0 {
		return fmt.Errorf("negative NodeCacheSize: %d", a.UniTrie.NodeCacheSize)
	}
	for name, s := range map[string]BasicService{
		"Pprof":      a.Pprof,
		"Prometheus": a.Prometheus,
	} {
		if s.Enabled && len(s.Addresses) == 0 {
			return fmt.Errorf("no bind addresses configured for %s", name)
		}
	}
	return nil
}
