package metrics

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(MessagesTotal.WithLabelValues("ticker"))
	MessagesTotal.WithLabelValues("ticker").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MessagesTotal.WithLabelValues("ticker")))

	OpenConnections.WithLabelValues("kline").Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(OpenConnections.WithLabelValues("kline")))
}

func TestServeExposesMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	core, logs := observer.New(zap.ErrorLevel)
	srv := Serve(addr, zap.New(core))
	defer srv.Close()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, "coinwatch_stream_open_connections")

	require.NoError(t, srv.Close())
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, logs.Len(), "closing is not an error")
}

func TestServeLogsListenFailure(t *testing.T) {
	// hold the port so ListenAndServe fails
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	core, logs := observer.New(zap.ErrorLevel)
	srv := Serve(ln.Addr().String(), zap.New(core))
	defer srv.Close()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("metrics server failed").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
}
