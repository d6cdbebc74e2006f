package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.Empty(t, cfg.Validate())

	require.True(t, cfg.Island.Enabled)
	require.True(t, cfg.ResinTrap.Enabled)
	require.Equal(t, 1, cfg.ResinTrap.StartLayerIndex)
	require.Equal(t, 4, cfg.Island.Connectivity)
}

func TestValidateWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Island.Connectivity = 6
	cfg.Island.SupportMultiplier = 2
	cfg.Overhang.ErodeIterations = 0
	cfg.ResinTrap.StartLayerIndex = 0
	cfg.ResinTrap.RequiredPixelsToDrain = 0
	cfg.PrintHeight.Offset = -1

	warnings := cfg.Validate()
	require.Len(t, warnings, 6)
}

func TestValidateDisabledDetectorsSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Island.Enabled = false
	cfg.Island.Connectivity = 6

	require.Empty(t, cfg.Validate())
}
