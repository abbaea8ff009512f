package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/nspcc-dev/unitrie/pkg/config"
	"go.uber.org/zap"
)

// Service serves metrics.
type Service struct {
	http        []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string

	lock      sync.Mutex
	running   []*http.Server
	listeners []net.Listener
	started   bool
}

// ErrAlreadyStarted is returned by Start for a service that has been started
// before, servers can't be reused after shutdown.
var ErrAlreadyStarted = errors.New("service has already been started")

// NewService configures logger and returns new service instance.
func NewService(name string, httpServers []*http.Server, cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		http:        httpServers,
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
	}
}

// newServers creates a server per configured address, all sharing handler.
func newServers(cfg config.BasicService, handler http.Handler) []*http.Server {
	srvs := make([]*http.Server, len(cfg.Addresses))
	for i, addr := range cfg.Addresses {
		srvs[i] = &http.Server{
			Addr:    addr,
			Handler: handler,
		}
	}
	return srvs
}

// Start runs http service with the exposed endpoint on the configured port.
// Listeners are bound synchronously, so the service is accessible when Start
// returns. If any address can't be bound, servers started so far are shut
// down and the error is returned.
func (ms *Service) Start() error {
	if !ms.config.Enabled {
		ms.log.Info("service hasn't started since it's disabled")
		return nil
	}
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if ms.started {
		return ErrAlreadyStarted
	}
	ms.started = true
	for _, srv := range ms.http {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			ms.shutDown()
			return fmt.Errorf("%s: %w", ms.serviceType, err)
		}
		srv.Addr = ln.Addr().String()
		ms.running = append(ms.running, srv)
		ms.listeners = append(ms.listeners, ln)
		ms.log.Info("starting service", zap.String("endpoint", srv.Addr))
		go func(s *http.Server) {
			err := s.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				ms.log.Error("failed to start service", zap.String("endpoint", s.Addr), zap.Error(err))
			}
		}(srv)
	}
	return nil
}

// Addresses returns the actual listening addresses of the service.
func (ms *Service) Addresses() []string {
	addrs := make([]string, 0, len(ms.http))
	for _, srv := range ms.http {
		addrs = append(addrs, srv.Addr)
	}
	return addrs
}

// ShutDown stops the service. It's a no-op for a service that is not running.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled {
		return
	}
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.shutDown()
}

// shutDown stops every running server, must be called with the lock held.
func (ms *Service) shutDown() {
	if len(ms.running) == 0 {
		return
	}
	for _, srv := range ms.running {
		ms.log.Info("shutting down service", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			ms.log.Error("can't shut down service", zap.String("endpoint", srv.Addr), zap.Error(err))
		}
	}
	for _, ln := range ms.listeners {
		_ = ln.Close()
	}
	ms.running = nil
	ms.listeners = nil
	_ = ms.log.Sync()
}
