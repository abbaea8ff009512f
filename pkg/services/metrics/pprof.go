package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/nspcc-dev/unitrie/pkg/config"
	"go.uber.org/zap"
)

// pprofHandlers maps debug endpoints to their handlers, the index also serves
// named runtime profiles like heap or goroutine.
var pprofHandlers = map[string]http.HandlerFunc{
	"/debug/pprof/":        pprof.Index,
	"/debug/pprof/cmdline": pprof.Cmdline,
	"/debug/pprof/profile": pprof.Profile,
	"/debug/pprof/symbol":  pprof.Symbol,
	"/debug/pprof/trace":   pprof.Trace,
}

// NewPprofService creates a service for profiling long trie operations like
// the stress run.
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	mux := http.NewServeMux()
	for pattern, h := range pprofHandlers {
		mux.Handle(pattern, h)
	}
	return NewService("Pprof", newServers(cfg, mux), cfg, log)
}
