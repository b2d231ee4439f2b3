package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"), zap.NewNop())
	assert.Equal(t, Default(), s.Load())
}

func TestLoadCorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Equal(t, Default(), NewStore(path, nil).Load())
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode":"professional"}`), 0o644))

	got := NewStore(path, nil).Load()
	assert.Equal(t, ModeProfessional, got.Mode)
	assert.Equal(t, []string{"BTC/USDT"}, got.SelectedPairs)
	assert.True(t, got.AlwaysOnTop)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"selectedPairs":[],"mode":"fancy","alwaysOnTop":false}`), 0o644))

	got := NewStore(path, nil).Load()
	assert.Equal(t, ModeSimple, got.Mode)
	assert.Equal(t, []string{"BTC/USDT"}, got.SelectedPairs)
	assert.False(t, got.AlwaysOnTop)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s := NewStore(path, nil)

	want := Settings{
		SelectedPairs: []string{"BTC/USDT", "ETH/USDT:futures", "KOGE/USDT:alpha"},
		Mode:          ModeProfessional,
		AlwaysOnTop:   false,
	}
	require.NoError(t, s.Save(want))
	assert.Equal(t, want, s.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"selectedPairs\": [")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestClone(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.SelectedPairs[0] = "ETH/USDT"
	assert.Equal(t, "BTC/USDT", a.SelectedPairs[0])
}
