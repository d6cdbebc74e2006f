package contour

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// donut builds a solid rectangle with a rectangular hole.
func donut(w, h int, solid, hole geometry.RectInt) *raster.Bitmap {
	b := raster.New(w, h)
	for y := solid.Y; y < solid.Y+solid.Height; y++ {
		for x := solid.X; x < solid.X+solid.Width; x++ {
			b.Set(x, y, 255)
		}
	}
	for y := hole.Y; y < hole.Y+hole.Height; y++ {
		for x := hole.X; x < hole.X+hole.Width; x++ {
			b.Set(x, y, 0)
		}
	}
	return b
}

func TestExtractHierarchy(t *testing.T) {
	b := donut(30, 30, geometry.NewRectInt(5, 5, 20, 20), geometry.NewRectInt(12, 12, 6, 6))
	defer b.Close()

	f := Extract(b)
	require.Len(t, f.Contours, 2)
	require.Len(t, f.Outer(), 1)
	require.Len(t, f.Holes(), 1)

	outer := f.Outer()[0]
	hole := f.Holes()[0]

	require.Equal(t, 0, outer.Depth)
	require.Equal(t, -1, outer.Parent)
	require.False(t, outer.IsHole())

	require.Equal(t, 1, hole.Depth)
	require.True(t, hole.IsHole())

	// The traced polygons run along pixel centers, so areas land near,
	// not exactly on, the painted pixel counts.
	require.InDelta(t, 400, outer.Area, 45)
	require.InDelta(t, 36, hole.Area, 20)
	require.Greater(t, outer.Area, hole.Area)

	require.True(t, outer.BBox.Intersects(hole.BBox))

	outerIdx := 0
	if f.Contours[0] != outer {
		outerIdx = 1
	}
	children := f.ChildrenOf(outerIdx)
	require.Len(t, children, 1)
	require.Same(t, hole, children[0])

	require.InDelta(t, 15, hole.Centroid.X, 1.5)
	require.InDelta(t, 15, hole.Centroid.Y, 1.5)
}

func TestExtractEmpty(t *testing.T) {
	b := raster.New(10, 10)
	defer b.Close()
	f := Extract(b)
	require.Empty(t, f.Contours)
	require.Empty(t, f.Outer())
	require.Empty(t, f.Holes())
}

func TestTranslate(t *testing.T) {
	b := donut(20, 20, geometry.NewRectInt(2, 2, 10, 10), geometry.NewRectInt(5, 5, 3, 3))
	defer b.Close()

	hole := Extract(b).Holes()[0]
	moved := hole.Translate(100, 50)

	require.Equal(t, hole.BBox.X+100, moved.BBox.X)
	require.Equal(t, hole.BBox.Y+50, moved.BBox.Y)
	require.Equal(t, hole.Area, moved.Area)
	require.InDelta(t, hole.Centroid.X+100, moved.Centroid.X, 1e-9)

	// The original is untouched.
	require.NotEqual(t, hole.BBox.X, moved.BBox.X)
}

func TestRasterize(t *testing.T) {
	b := donut(20, 20, geometry.NewRectInt(2, 2, 12, 12), geometry.NewRectInt(6, 6, 4, 4))
	defer b.Close()

	hole := Extract(b).Holes()[0]
	r := hole.Rasterize(20, 20)
	defer r.Close()

	count := r.CountNonZero()
	require.Greater(t, count, 0)
	require.LessOrEqual(t, count, 6*6*2)
	require.Equal(t, uint8(255), r.Get(7, 7))
	require.Equal(t, uint8(0), r.Get(0, 0))
}

func TestIntersect(t *testing.T) {
	a := donut(30, 30, geometry.NewRectInt(2, 2, 10, 10), geometry.NewRectInt(5, 5, 3, 3))
	defer a.Close()
	b := donut(30, 30, geometry.NewRectInt(8, 8, 10, 10), geometry.NewRectInt(11, 11, 3, 3))
	defer b.Close()
	c := donut(30, 30, geometry.NewRectInt(20, 20, 8, 8), geometry.NewRectInt(23, 23, 2, 2))
	defer c.Close()

	oa := Extract(a).Outer()[0]
	ob := Extract(b).Outer()[0]
	oc := Extract(c).Outer()[0]

	require.True(t, Intersect(oa, ob))
	require.True(t, Intersect(ob, oa))
	require.False(t, Intersect(oa, oc))
}

func TestContainsDisc(t *testing.T) {
	b := donut(40, 40, geometry.NewRectInt(5, 5, 30, 30), geometry.NewRectInt(15, 15, 10, 10))
	defer b.Close()

	hole := Extract(b).Holes()[0]
	center := hole.Centroid

	require.True(t, hole.ContainsDisc(center, 2))
	require.False(t, hole.ContainsDisc(center, 20))
	require.False(t, hole.ContainsDisc(geometry.Point2D{X: 2, Y: 2}, 1))
}

func TestDrawFilled(t *testing.T) {
	b := donut(20, 20, geometry.NewRectInt(2, 2, 12, 12), geometry.NewRectInt(6, 6, 4, 4))
	defer b.Close()

	dst := raster.New(20, 20)
	defer dst.Close()
	DrawFilled(dst, Extract(b).Outer(), 255)

	// Filling the outer contour covers the hole too.
	require.Equal(t, uint8(255), dst.Get(7, 7))
	require.Equal(t, uint8(255), dst.Get(3, 3))
	require.Equal(t, uint8(0), dst.Get(0, 0))
}
