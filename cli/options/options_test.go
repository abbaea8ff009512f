package options

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/unitrie/pkg/config"
	"github.com/nspcc-dev/unitrie/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"go.uber.org/zap/zapcore"
)

func TestGetConfigFromContext(t *testing.T) {
	dir := t.TempDir()
	cfgData := []byte("ApplicationConfiguration:\n  DBConfiguration:\n    Type: boltdb\n    BoltDBOptions:\n      FilePath: unitrie.bolt\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), cfgData, 0o644))

	t.Run("config path", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-path", dir, "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		cfg, err := GetConfigFromContext(ctx)
		require.NoError(t, err)
		require.Equal(t, dbconfig.BoltDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
		require.Equal(t, "unitrie.bolt", cfg.ApplicationConfiguration.DBConfiguration.BoltDBOptions.FilePath)
	})
	t.Run("config file with relative path", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-file", filepath.Join(dir, config.DefaultConfigFile), "")
		set.String("relative-path", "/data", "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		cfg, err := GetConfigFromContext(ctx)
		require.NoError(t, err)
		require.Equal(t, filepath.Join("/data", "unitrie.bolt"), cfg.ApplicationConfiguration.DBConfiguration.BoltDBOptions.FilePath)
	})
	t.Run("missing", func(t *testing.T) {
		set := flag.NewFlagSet("flagSet", flag.ExitOnError)
		set.String("config-path", t.TempDir(), "")
		ctx := cli.NewContext(cli.NewApp(), set, nil)
		_, err := GetConfigFromContext(ctx)
		require.Error(t, err)
	})
}

func TestHandleLoggingParams(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		logger, lvl, err := HandleLoggingParams(false, config.ApplicationConfiguration{})
		require.NoError(t, err)
		require.NotNil(t, logger)
		require.Equal(t, zapcore.InfoLevel, lvl.Level())
	})
	t.Run("debug overrides", func(t *testing.T) {
		_, lvl, err := HandleLoggingParams(true, config.ApplicationConfiguration{LogLevel: "warn"})
		require.NoError(t, err)
		require.Equal(t, zapcore.DebugLevel, lvl.Level())
	})
	t.Run("bad level", func(t *testing.T) {
		_, _, err := HandleLoggingParams(false, config.ApplicationConfiguration{LogLevel: "loud"})
		require.Error(t, err)
	})
	t.Run("log path", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "logs", "unitrie.log")
		logger, lvl, err := HandleLoggingParams(false, config.ApplicationConfiguration{LogLevel: "error", LogPath: logPath})
		require.NoError(t, err)
		require.Equal(t, zapcore.ErrorLevel, lvl.Level())
		logger.Error("test record")
		require.NoError(t, logger.Sync())
		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		require.Contains(t, string(data), "test record")
	})
}
