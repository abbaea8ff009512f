package metrics

import (
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/nspcc-dev/unitrie/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, url string) string {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusService(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "unitrie",
		Name:      "metrics_test_total",
		Help:      "Test counter",
	})
	require.NoError(t, prometheus.Register(counter))
	t.Cleanup(func() { prometheus.Unregister(counter) })
	counter.Add(3)

	cfg := config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}
	srv := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.ShutDown)

	addrs := srv.Addresses()
	require.Equal(t, 1, len(addrs))
	body := get(t, "http://"+addrs[0]+"/metrics")
	require.True(t, strings.Contains(body, "unitrie_metrics_test_total 3"), body)
}

func TestPprofService(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}
	srv := NewPprofService(cfg, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.ShutDown)
	get(t, "http://"+srv.Addresses()[0]+"/debug/pprof/cmdline")
}

func TestDisabledService(t *testing.T) {
	srv := NewPrometheusService(config.BasicService{Addresses: []string{"127.0.0.1:0"}}, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())
	srv.ShutDown()
	require.Nil(t, NewPrometheusService(config.BasicService{}, nil))
}

func TestServiceStartFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	cfg := config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0", busy.Addr().String()}}
	srv := NewPrometheusService(cfg, zaptest.NewLogger(t))
	require.Error(t, srv.Start())

	// The first server was bound before the failure and must be released.
	first := srv.Addresses()[0]
	conn, err := net.Dial("tcp", first)
	if err == nil {
		_ = conn.Close()
	}
	require.Error(t, err, "%s is still accepting connections", first)
	srv.ShutDown()
	require.ErrorIs(t, srv.Start(), ErrAlreadyStarted)
}

func TestServiceDoubleStart(t *testing.T) {
	cfg := config.BasicService{Enabled: true, Addresses: []string{"127.0.0.1:0"}}
	srv := NewPprofService(cfg, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())
	require.ErrorIs(t, srv.Start(), ErrAlreadyStarted)
	srv.ShutDown()
	srv.ShutDown()

	_, err := net.Dial("tcp", srv.Addresses()[0])
	require.Error(t, err)
}
