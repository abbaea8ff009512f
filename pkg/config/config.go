package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/unitrie/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the name of the configuration file looked up by Load.
	DefaultConfigFile = "unitrie.yml"
	// DefaultNodeCacheSize is the default number of decoded trie nodes kept
	// in memory.
	DefaultNodeCacheSize = 10000
)

// Version is the version of the tool, set at build time.
var Version string

// Config is the top level struct representing the configuration.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load attempts to load the config from the given directory.
func Load(path string, relativePath ...string) (Config, error) {
	return LoadFile(filepath.Join(path, DefaultConfigFile), relativePath...)
}

// LoadFile loads config from the provided path. An optional relativePath is
// prepended to all relative paths of the configuration.
func LoadFile(configPath string, relativePath ...string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Parse(configData, relativePath...)
}

// Parse decodes YAML config data applying defaults for missing fields.
// Unknown fields are rejected.
func Parse(data []byte, relativePath ...string) (Config, error) {
	config := Config{
		ApplicationConfiguration: ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
			UniTrie: UniTrie{
				NodeCacheSize: DefaultNodeCacheSize,
			},
		},
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if len(relativePath) == 1 && relativePath[0] != "" {
		updateRelativePaths(relativePath[0], &config)
	}
	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// updateRelativePaths updates relative paths in the config structure based on
// the provided relative path.
func updateRelativePaths(relativePath string, config *Config) {
	updatePath := func(path *string) {
		if *path != "" && !filepath.IsAbs(*path) {
			*path = filepath.Join(relativePath, *path)
		}
	}

	updatePath(&config.ApplicationConfiguration.LogPath)
	updatePath(&config.ApplicationConfiguration.DBConfiguration.LevelDBOptions.DataDirectoryPath)
	updatePath(&config.ApplicationConfiguration.DBConfiguration.BoltDBOptions.FilePath)
}
