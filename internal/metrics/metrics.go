// Package metrics exposes prometheus counters for the stream layer.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coinwatch_stream_messages_total", Help: "Stream messages received"},
		[]string{"channel"},
	)
	DroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coinwatch_stream_dropped_total", Help: "Malformed stream messages dropped"},
		[]string{"channel"},
	)
	AppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coinwatch_stream_applied_total", Help: "Updates applied to the price and kline stores"},
		[]string{"channel"},
	)
	ReconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "coinwatch_stream_reconnects_total", Help: "Reconnect attempts scheduled"},
		[]string{"channel"},
	)
	OpenConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "coinwatch_stream_open_connections", Help: "Stream connections currently connected"},
		[]string{"channel"},
	)
)

func init() {
	prometheus.MustRegister(MessagesTotal, DroppedTotal, AppliedTotal, ReconnectsTotal, OpenConnections)
}

// Serve starts the /metrics endpoint in the background. Listen failures are
// logged.
func Serve(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}
