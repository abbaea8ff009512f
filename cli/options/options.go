/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/config"
	"github.com/nspcc-dev/unitrie/pkg/io"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is a flag for commands that use configuration.
var Config = cli.StringFlag{
	Name:  "config-path",
	Usage: "path to directory with " + config.DefaultConfigFile + " configuration file (may be overridden by --config-file option)",
}

// ConfigFile is a flag for commands that use configuration and provide
// path to the specific config file instead of config path.
var ConfigFile = cli.StringFlag{
	Name:  "config-file",
	Usage: "path to the configuration file (overrides --config-path option)",
}

// RelativePath is a flag for commands that use configuration and provide
// a prefix to all relative paths in config files.
var RelativePath = cli.StringFlag{
	Name:  "relative-path",
	Usage: "a prefix to all relative paths in the configuration file",
}

// Debug is a flag for commands that allow debug mode usage.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (LOTS of output, overrides configuration)",
}

// ConfigFlags is the set of flags every database command accepts.
var ConfigFlags = []cli.Flag{Config, ConfigFile, RelativePath, Debug}

// GetConfigFromContext looks at the path flags in the given context and
// returns an appropriate config.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		configFile   = ctx.String("config-file")
		relativePath = ctx.String("relative-path")
	)
	if len(configFile) != 0 {
		return config.LoadFile(configFile, relativePath)
	}
	var configPath = "./config"
	if argCp := ctx.String("config-path"); argCp != "" {
		configPath = argCp
	}
	return config.Load(configPath, relativePath)
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, nil, err
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}
