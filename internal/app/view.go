package app

import (
	"strings"

	"coinwatch/internal/market"
	"coinwatch/internal/memorystore"
	"coinwatch/internal/settings"
	"coinwatch/internal/stream"
)

// View is what the window renders.
type View struct {
	Mode        settings.Mode
	AlwaysOnTop bool
	Minimized   bool
	Pairs       []PairView
}

type PairView struct {
	ID     string
	Symbol string
	Name   string
	Market market.MarketType
	Status stream.ConnState

	// Price is nil until the first ticker update is applied.
	Price *memorystore.PriceState

	// Chart fields are set in professional mode only.
	Chart       []market.KlineBar
	ChartStatus stream.ConnState
	ChartLoaded bool
}

// Loading reports whether the pair has no price to show yet.
func (p PairView) Loading() bool { return p.Price == nil }

// View snapshots the watchlist in display order.
func (w *Widget) View() View {
	v := View{
		Mode:        w.settings.Mode,
		AlwaysOnTop: w.settings.AlwaysOnTop,
		Minimized:   w.minimized,
		Pairs:       make([]PairView, 0, len(w.pairs)),
	}

	for _, key := range w.pairs {
		pv := PairView{
			ID:     key.ID(),
			Symbol: key.Symbol,
			Name:   w.displayName(key),
			Market: key.Market,
		}
		pv.Status, _ = w.manager.Status(key)
		if st, ok := w.prices.Get(key); ok {
			pv.Price = &st
		}
		if state, loaded, ok := w.manager.KlineStatus(key); ok {
			pv.ChartStatus = state
			pv.ChartLoaded = loaded
			pv.Chart = w.klines.GetBySymbol(key)
		}
		v.Pairs = append(v.Pairs, pv)
	}
	return v
}

func (w *Widget) displayName(key market.PairKey) string {
	if p, ok := w.catalog.Lookup(key); ok && p.Name != "" {
		return p.Name
	}
	base, _, _ := strings.Cut(key.Symbol, "/")
	return market.TokenName(base)
}
