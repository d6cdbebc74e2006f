package detect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pauljmelia/slicecheck/internal/contour"
	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/internal/stack"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

func testMachine() stack.Machine {
	return stack.Machine{DisplayWidth: 40, DisplayHeight: 40, LayerHeight: 0.05, MaxZ: 150}
}

func fillRect(b *raster.Bitmap, r geometry.RectInt, value uint8) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.Set(x, y, value)
		}
	}
}

// solidLayer builds a 40x40 raster with one filled rectangle.
func solidLayer(solid geometry.RectInt) *raster.Bitmap {
	b := raster.New(40, 40)
	fillRect(b, solid, 255)
	return b
}

// holedLayer builds a 40x40 raster with a filled rectangle minus a hole.
func holedLayer(solid, hole geometry.RectInt) *raster.Bitmap {
	b := solidLayer(solid)
	fillRect(b, hole, 0)
	return b
}

// buildStack assembles a stack over the test machine from prebuilt rasters.
// Ownership of the rasters transfers to the stack.
func buildStack(rasters ...*raster.Bitmap) *stack.Stack {
	s := stack.New(testMachine())
	for _, b := range rasters {
		s.AddLayer(b)
	}
	return s
}

// holeContour extracts the single hole contour of a donut raster, for tests
// that exercise grouping directly.
func holeContour(t *testing.T, hole geometry.RectInt) *contour.Contour {
	t.Helper()
	b := holedLayer(geometry.NewRectInt(2, 2, 36, 36), hole)
	defer b.Close()
	holes := contour.Extract(b).Holes()
	require.Len(t, holes, 1)
	return holes[0]
}

// resinOnlyConfig enables just the air-map pipeline with thresholds sized for
// the small synthetic stacks used in these tests.
func resinOnlyConfig() Config {
	return Config{
		Workers: 1,
		ResinTrap: ResinTrapConfig{
			Enabled:                  true,
			DetectSuctionCups:        true,
			StartLayerIndex:          1,
			BinaryThreshold:          127,
			RequiredAreaToProcess:    4,
			RequiredPixelsToDrain:    10,
			SuctionCupRequiredArea:   20,
			SuctionCupRequiredHeight: 0.1,
		},
	}
}
