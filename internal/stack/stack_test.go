package stack

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

func testMachine() Machine {
	return Machine{DisplayWidth: 40, DisplayHeight: 40, LayerHeight: 0.05, MaxZ: 150}
}

func rectRaster(w, h int, r geometry.RectInt) *raster.Bitmap {
	b := raster.New(w, h)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.Set(x, y, 255)
		}
	}
	return b
}

func TestAddLayer(t *testing.T) {
	s := New(testMachine())
	defer s.Close()

	l0 := s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(10, 10, 5, 5)))
	l1 := s.AddLayer(raster.New(40, 40))
	l2 := s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(8, 12, 10, 4)))

	require.Equal(t, 3, s.Count())
	require.Equal(t, 2, s.LastLayerIndex())

	require.Equal(t, 0, l0.Index)
	require.InDelta(t, 0.05, l0.Z, 1e-9)
	require.InDelta(t, 0.15, l2.Z, 1e-9)
	require.InDelta(t, 0.15, s.PrintHeight(), 1e-9)

	require.Equal(t, geometry.NewRectInt(10, 10, 5, 5), l0.Bounds)
	require.False(t, l0.IsEmpty)
	require.True(t, l1.IsEmpty)

	require.Equal(t, geometry.NewRectInt(8, 10, 10, 6), s.BoundingRect())
}

func TestFullyLoaded(t *testing.T) {
	s := New(testMachine())
	defer s.Close()

	require.False(t, s.FullyLoaded())

	s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(5, 5, 4, 4)))
	require.True(t, s.FullyLoaded())

	placeholder := s.AddLayer(nil)
	require.False(t, s.FullyLoaded())
	require.Nil(t, placeholder.Raster)
}

func TestFirstNonEmptyLayer(t *testing.T) {
	s := New(testMachine())
	defer s.Close()

	require.Equal(t, -1, s.FirstNonEmptyLayer())

	s.AddLayer(raster.New(40, 40))
	s.AddLayer(raster.New(40, 40))
	s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(5, 5, 4, 4)))
	require.Equal(t, 2, s.FirstNonEmptyLayer())
}

func TestCroppedRaster(t *testing.T) {
	s := New(testMachine())
	defer s.Close()

	s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(10, 10, 6, 6)))

	c := s.CroppedRaster(0, geometry.NewRectInt(8, 8, 10, 10))
	defer c.Close()
	require.Equal(t, 10, c.Width())
	require.Equal(t, 10, c.Height())
	require.Equal(t, 36, c.CountNonZero())
	require.Equal(t, uint8(255), c.Get(2, 2))
}

func TestApplyModifications(t *testing.T) {
	s := New(testMachine())
	defer s.Close()

	s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(10, 10, 10, 10)))

	err := s.ApplyModifications([]Modification{
		{LayerIndex: 0, Center: image.Point{X: 15, Y: 15}, Radius: 2, Value: 0},
	})
	require.NoError(t, err)

	l := s.Layer(0)
	require.Equal(t, uint8(0), l.Raster.Get(15, 15))
	require.Equal(t, uint8(255), l.Raster.Get(10, 10))
	require.False(t, l.IsEmpty)

	// Carving the whole layer away flips the empty flag.
	err = s.ApplyModifications([]Modification{
		{LayerIndex: 0, Center: image.Point{X: 15, Y: 15}, Radius: 30, Value: 0},
	})
	require.NoError(t, err)
	require.True(t, s.Layer(0).IsEmpty)
}

func TestApplyModificationsErrors(t *testing.T) {
	s := New(testMachine())
	defer s.Close()
	s.AddLayer(rectRaster(40, 40, geometry.NewRectInt(5, 5, 4, 4)))
	s.AddLayer(nil)

	err := s.ApplyModifications([]Modification{{LayerIndex: 5}})
	require.Error(t, err)

	err = s.ApplyModifications([]Modification{{LayerIndex: 1, Radius: 2}})
	require.Error(t, err)

	err = s.ApplyModifications([]Modification{
		{LayerIndex: 0, Center: image.Point{X: 50, Y: 5}, Radius: 2},
	})
	require.Error(t, err)
}
