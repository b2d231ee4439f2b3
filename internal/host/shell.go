// Package host is the boundary to the process hosting the widget window.
package host

import (
	"sync"

	"coinwatch/internal/settings"

	"go.uber.org/zap"
)

// Shell performs window operations on behalf of the widget core.
type Shell interface {
	// Resize fits the window to count watched pairs in mode.
	Resize(count int, mode settings.Mode)
	SetMinimized(minimized bool)
	SetAlwaysOnTop(on bool)
}

// LogShell is a headless Shell that only records requests.
type LogShell struct {
	logger *zap.Logger

	mu        sync.Mutex
	count     int
	mode      settings.Mode
	minimized bool
	onTop     bool
}

func NewLogShell(logger *zap.Logger) *LogShell {
	return &LogShell{logger: logger}
}

func (s *LogShell) Resize(count int, mode settings.Mode) {
	s.mu.Lock()
	s.count, s.mode = count, mode
	s.mu.Unlock()
	s.logger.Info("resize window", zap.Int("pairs", count), zap.String("mode", string(mode)))
}

func (s *LogShell) SetMinimized(minimized bool) {
	s.mu.Lock()
	s.minimized = minimized
	s.mu.Unlock()
	s.logger.Info("set minimized", zap.Bool("minimized", minimized))
}

func (s *LogShell) SetAlwaysOnTop(on bool) {
	s.mu.Lock()
	s.onTop = on
	s.mu.Unlock()
	s.logger.Info("set always on top", zap.Bool("on", on))
}

// Window is the last state requested of a LogShell.
type Window struct {
	Pairs       int
	Mode        settings.Mode
	Minimized   bool
	AlwaysOnTop bool
}

func (s *LogShell) Window() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Window{Pairs: s.count, Mode: s.mode, Minimized: s.minimized, AlwaysOnTop: s.onTop}
}
