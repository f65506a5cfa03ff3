package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), zerolog.Nop())
	require.NoError(t, err)

	got := s.Param().Load()
	assert.Equal(t, DefaultTuning().TickPeriod, got.TickPeriod)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ballClusterDistance: 750\n"), 0o644))

	s, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	got := s.Param().Load()
	assert.Equal(t, 750.0, got.BallClusterDistance)
	assert.Equal(t, DefaultTuning().TickPeriod, got.TickPeriod)
}
