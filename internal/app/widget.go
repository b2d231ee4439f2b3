// Package app is the widget controller. It owns the user's watchlist and
// settings, keeps the stream manager reconciled with them and asks the host
// shell to fit the window.
//
// A Widget is confined to the stream dispatcher: call its methods from
// closures posted to it (see stream.Call).
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coinwatch/internal/clock"
	"coinwatch/internal/host"
	"coinwatch/internal/market"
	"coinwatch/internal/memorystore"
	"coinwatch/internal/settings"
	"coinwatch/internal/stream"

	"go.uber.org/zap"
)

const DefaultResizeDelay = 50 * time.Millisecond

var (
	ErrLastPair      = errors.New("cannot remove the last watched pair")
	ErrDuplicatePair = errors.New("pair is already watched")
)

// CatalogSource provides the trading pair catalog.
// *snapshot.CatalogLoader satisfies it.
type CatalogSource interface {
	Load(ctx context.Context, force bool) (*market.Catalog, error)
}

// Deps wires a Widget. Settings, Manager and Shell are required.
type Deps struct {
	Settings   *settings.Store
	Catalog    CatalogSource
	Manager    *stream.Manager
	Prices     *memorystore.MemoryPriceStore
	Klines     *memorystore.MemoryKlineStore
	Shell      host.Shell
	Dispatcher stream.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger

	ResizeDelay time.Duration
	// Spawn runs the initial catalog load. Defaults to a new goroutine.
	Spawn func(func())
}

type Widget struct {
	store      *settings.Store
	source     CatalogSource
	manager    *stream.Manager
	prices     *memorystore.MemoryPriceStore
	klines     *memorystore.MemoryKlineStore
	shell      host.Shell
	dispatcher stream.Dispatcher
	logger     *zap.Logger
	spawn      func(func())
	resize     *stream.Debouncer

	settings  settings.Settings
	pairs     []market.PairKey
	catalog   *market.Catalog
	minimized bool
}

func NewWidget(d Deps) *Widget {
	if d.Dispatcher == nil {
		d.Dispatcher = stream.Inline{}
	}
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.ResizeDelay <= 0 {
		d.ResizeDelay = DefaultResizeDelay
	}
	if d.Spawn == nil {
		d.Spawn = func(f func()) { go f() }
	}
	if d.Prices == nil {
		d.Prices = memorystore.NewPriceStore(memorystore.DefaultTrendPoints)
	}
	if d.Klines == nil {
		d.Klines = memorystore.NewKlineStore(memorystore.DefaultKlineCap)
	}

	w := &Widget{
		store:      d.Settings,
		source:     d.Catalog,
		manager:    d.Manager,
		prices:     d.Prices,
		klines:     d.Klines,
		shell:      d.Shell,
		dispatcher: d.Dispatcher,
		logger:     d.Logger,
		spawn:      d.Spawn,
	}
	w.resize = stream.NewDebouncer(d.Clock, d.ResizeDelay, d.Dispatcher.Post, w.fitWindow)
	return w
}

// Start loads settings, opens the streams for the saved watchlist and loads
// the catalog in the background.
func (w *Widget) Start(ctx context.Context) {
	w.settings = w.store.Load()
	w.pairs = parsePairs(w.settings.SelectedPairs, w.logger)
	if len(w.pairs) == 0 {
		w.logger.Warn("no usable pairs in settings, using defaults")
		w.settings.SelectedPairs = settings.Default().SelectedPairs
		w.pairs = parsePairs(w.settings.SelectedPairs, w.logger)
	}
	w.settings.SelectedPairs = pairIDs(w.pairs)

	w.logger.Info("widget started",
		zap.Strings("pairs", w.settings.SelectedPairs),
		zap.String("mode", string(w.settings.Mode)),
	)

	w.shell.SetAlwaysOnTop(w.settings.AlwaysOnTop)
	w.reconcile()
	w.resize.Trigger()

	if w.source == nil {
		return
	}
	w.spawn(func() {
		catalog, err := w.source.Load(ctx, false)
		if err != nil {
			w.logger.Warn("catalog unavailable, streaming without metadata", zap.Error(err))
			return
		}
		w.dispatcher.Post(func() { w.SetCatalog(catalog) })
	})
}

// SetCatalog installs a freshly loaded catalog. Pairs whose stream symbol
// changed are restarted.
func (w *Widget) SetCatalog(c *market.Catalog) {
	w.catalog = c
	w.reconcile()
}

// AddPair appends id to the watchlist. Adding a watched pair changes nothing
// and returns ErrDuplicatePair.
func (w *Widget) AddPair(id string) error {
	key, err := market.ParsePairID(id)
	if err != nil {
		return err
	}
	if w.indexOf(key) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicatePair, key)
	}

	w.pairs = append(w.pairs, key)
	w.changed()
	w.logger.Info("pair added", zap.String("pair", key.ID()))
	return nil
}

// RemovePair drops id from the watchlist. The last pair cannot be removed.
func (w *Widget) RemovePair(id string) error {
	key, err := market.ParsePairID(id)
	if err != nil {
		return err
	}
	i := w.indexOf(key)
	if i < 0 {
		return nil
	}
	if len(w.pairs) == 1 {
		return ErrLastPair
	}

	w.pairs = append(w.pairs[:i:i], w.pairs[i+1:]...)
	w.changed()
	w.logger.Info("pair removed", zap.String("pair", key.ID()))
	return nil
}

// SetMode switches between the simple and professional layout. Charts are
// streamed only in professional mode.
func (w *Widget) SetMode(mode settings.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if mode == w.settings.Mode {
		return nil
	}
	w.settings.Mode = mode
	w.changed()
	return nil
}

func (w *Widget) SetAlwaysOnTop(on bool) {
	w.settings.AlwaysOnTop = on
	w.save()
	w.shell.SetAlwaysOnTop(on)
}

// ToggleMinimized flips the minimized state and reports the new value.
func (w *Widget) ToggleMinimized() bool {
	w.minimized = !w.minimized
	w.shell.SetMinimized(w.minimized)
	return w.minimized
}

// Search lists catalog pairs that are not yet watched.
func (w *Widget) Search(query string, filter market.MarketType) []market.Pair {
	return w.catalog.Search(query, w.pairs, filter)
}

// Settings returns a copy of the current settings.
func (w *Widget) Settings() settings.Settings {
	return w.settings.Clone()
}

// Close stops every stream.
func (w *Widget) Close() {
	w.resize.Stop()
	w.manager.Close()
}

func (w *Widget) changed() {
	w.settings.SelectedPairs = pairIDs(w.pairs)
	w.save()
	w.reconcile()
	w.resize.Trigger()
}

func (w *Widget) save() {
	if err := w.store.Save(w.settings); err != nil {
		w.logger.Warn("failed to save settings", zap.String("path", w.store.Path()), zap.Error(err))
	}
}

func (w *Widget) reconcile() {
	watched := make([]market.WatchedPair, len(w.pairs))
	for i, key := range w.pairs {
		watched[i] = w.catalog.Resolve(key)
	}
	w.manager.Reconcile(watched, w.settings.Mode == settings.ModeProfessional)
}

func (w *Widget) fitWindow() {
	w.shell.Resize(len(w.pairs), w.settings.Mode)
}

func (w *Widget) indexOf(key market.PairKey) int {
	for i, k := range w.pairs {
		if k == key {
			return i
		}
	}
	return -1
}

func parsePairs(ids []string, logger *zap.Logger) []market.PairKey {
	var out []market.PairKey
	seen := make(map[market.PairKey]bool, len(ids))
	for _, id := range ids {
		key, err := market.ParsePairID(strings.TrimSpace(id))
		if err != nil {
			logger.Warn("skipping saved pair", zap.String("pair", id), zap.Error(err))
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func pairIDs(keys []market.PairKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.ID()
	}
	return out
}
