package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/unitrie/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

const testConfig = `ApplicationConfiguration:
  LogLevel: debug
  LogPath: ./logs/unitrie.log
  DBConfiguration:
    Type: leveldb
    LevelDBOptions:
      DataDirectoryPath: ./chains/unitrie
  UniTrie:
    NodeCacheSize: 500
  Prometheus:
    Enabled: true
    Addresses:
      - ":2112"
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(testConfig), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	a := cfg.ApplicationConfiguration
	require.Equal(t, "debug", a.LogLevel)
	require.Equal(t, dbconfig.LevelDB, a.DBConfiguration.Type)
	require.Equal(t, "./chains/unitrie", a.DBConfiguration.LevelDBOptions.DataDirectoryPath)
	require.Equal(t, 500, a.UniTrie.NodeCacheSize)
	require.True(t, a.Prometheus.Enabled)
	require.Equal(t, []string{":2112"}, a.Prometheus.Addresses)

	t.Run("relative path", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(dir, DefaultConfigFile), "/data")
		require.NoError(t, err)
		a := cfg.ApplicationConfiguration
		require.Equal(t, filepath.Join("/data", "logs/unitrie.log"), a.LogPath)
		require.Equal(t, filepath.Join("/data", "chains/unitrie"), a.DBConfiguration.LevelDBOptions.DataDirectoryPath)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("ApplicationConfiguration: {}\n"))
		require.NoError(t, err)
		require.Equal(t, dbconfig.InMemoryDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
		require.Equal(t, DefaultNodeCacheSize, cfg.ApplicationConfiguration.UniTrie.NodeCacheSize)
		require.False(t, cfg.ApplicationConfiguration.Prometheus.Enabled)
	})
	for name, data := range map[string]string{
		"unknown field":     "ApplicationConfiguration:\n  Unknown: 1\n",
		"bad log level":     "ApplicationConfiguration:\n  LogLevel: loud\n",
		"bad db type":       "ApplicationConfiguration:\n  DBConfiguration:\n    Type: badgerdb\n",
		"negative cache":    "ApplicationConfiguration:\n  UniTrie:\n    NodeCacheSize: -1\n",
		"no prom addresses": "ApplicationConfiguration:\n  Prometheus:\n    Enabled: true\n",
		"not yaml":          "ApplicationConfiguration: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
		})
	}
}
