package stack

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLayerPNG(t *testing.T, path string, w, h int, solid image.Rectangle) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := solid.Min.Y; y < solid.Max.Y; y++ {
		for x := solid.Min.X; x < solid.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestIsSupportedFormat(t *testing.T) {
	require.True(t, IsSupportedFormat("layer0001.png"))
	require.True(t, IsSupportedFormat("LAYER.PNG"))
	require.True(t, IsSupportedFormat("slice.tif"))
	require.False(t, IsSupportedFormat("model.stl"))
	require.False(t, IsSupportedFormat("readme"))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeLayerPNG(t, filepath.Join(dir, "layer_002.png"), 32, 32, image.Rect(8, 8, 20, 20))
	writeLayerPNG(t, filepath.Join(dir, "layer_001.png"), 32, 32, image.Rect(5, 5, 15, 15))
	writeLayerPNG(t, filepath.Join(dir, "notes.txt"), 32, 32, image.Rectangle{})

	s, err := LoadDirectory(dir, Machine{LayerHeight: 0.05})
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, 2, s.Count())
	require.True(t, s.FullyLoaded())

	// Alphanumeric order puts layer_001 at the bottom; display size comes
	// from the first image when the machine leaves it unset.
	require.Equal(t, 32, s.Machine.DisplayWidth)
	require.Equal(t, 32, s.Machine.DisplayHeight)
	require.Equal(t, 100, s.Layer(0).Raster.CountNonZero())
	require.Equal(t, 144, s.Layer(1).Raster.CountNonZero())
}

func TestLoadDirectoryEmpty(t *testing.T) {
	_, err := LoadDirectory(t.TempDir(), Machine{LayerHeight: 0.05})
	require.Error(t, err)
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "nope"), Machine{LayerHeight: 0.05})
	require.Error(t, err)
}
