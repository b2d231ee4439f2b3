package app

import (
	"context"
	"testing"
	"time"

	"coinwatch/internal/market"
	"coinwatch/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecCommands(t *testing.T) {
	catalog := market.NewCatalog([]market.Pair{
		{Symbol: "BTC/USDT", Name: "Bitcoin", BaseAsset: "BTC", Market: market.Spot},
		{Symbol: "ETH/USDT", Name: "Ethereum", BaseAsset: "ETH", Market: market.Spot},
		{Symbol: "ETH/USDT", Name: "Ethereum", BaseAsset: "ETH", Market: market.Futures},
	})
	h := newHarness(t, fakeCatalog{catalog: catalog})
	h.w.Start(context.Background())
	h.runSpawned()

	out, err := h.w.Exec("search eth futures")
	require.NoError(t, err)
	assert.Contains(t, out, "ETH/USDT:futures")
	assert.NotContains(t, out, "ETH/USDT ")

	_, err = h.w.Exec("add ETH/USDT:futures")
	require.NoError(t, err)
	_, err = h.w.Exec("mode PROFESSIONAL")
	require.NoError(t, err)
	assert.Equal(t, settings.ModeProfessional, h.w.Settings().Mode)

	_, err = h.w.Exec("top off")
	require.NoError(t, err)
	assert.False(t, h.w.Settings().AlwaysOnTop)

	out, err = h.w.Exec("min")
	require.NoError(t, err)
	assert.Equal(t, "minimized", out)

	_, err = h.w.Exec("rm BTC/USDT")
	require.NoError(t, err)
	_, err = h.w.Exec("rm ETH/USDT:futures")
	assert.ErrorIs(t, err, ErrLastPair)

	_, err = h.w.Exec("add")
	assert.Error(t, err)
	_, err = h.w.Exec("frobnicate")
	assert.Error(t, err)

	out, err = h.w.Exec("")
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestFormatView(t *testing.T) {
	h := newHarness(t, nil)
	h.w.Start(context.Background())

	out, err := h.w.Exec("view")
	require.NoError(t, err)
	assert.Contains(t, out, "mode=simple")
	assert.Contains(t, out, "loading")

	conn := h.transport.last("ticker/BTCUSDT")
	conn.h.OnOpen()
	conn.h.OnMessage([]byte(`{"e":"24hrTicker","s":"BTCUSDT","c":"64000.5","P":"-1.234","h":"1","l":"1","v":"1"}`))
	h.clock.Advance(200 * time.Millisecond)

	out = FormatView(h.w.View())
	assert.Contains(t, out, "64000.5")
	assert.Contains(t, out, "-1.23%")
	assert.Contains(t, out, "down")
	assert.Contains(t, out, "connected")
}
