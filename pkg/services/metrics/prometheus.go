package metrics

import (
	"github.com/nspcc-dev/unitrie/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewPrometheusService creates a service exposing trie and store metrics
// registered in the default registry at /metrics.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	handler := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(log.Named("promhttp")),
		ErrorHandling: promhttp.ContinueOnError,
	})
	return NewService("Prometheus", newServers(cfg, handler), cfg, log)
}
