package host

import (
	"testing"

	"coinwatch/internal/settings"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogShellRecordsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogShell(zap.New(core))

	s.Resize(3, settings.ModeProfessional)
	s.SetMinimized(true)
	s.SetAlwaysOnTop(true)

	assert.Equal(t, Window{Pairs: 3, Mode: settings.ModeProfessional, Minimized: true, AlwaysOnTop: true}, s.Window())
	assert.Equal(t, 1, logs.FilterMessage("resize window").Len())
	assert.Equal(t, 3, logs.Len())
}
