// Package contour extracts closed polygon boundaries from binary rasters,
// preserving the parent/child relationships that mark enclosed holes.
package contour

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// Contour is one closed polygon boundary of a raster region.
type Contour struct {
	Points    []image.Point
	BBox      geometry.RectInt
	Area      float64 // enclosed area from the shoelace formula
	Perimeter float64
	Centroid  geometry.Point2D

	// Parent is the index of the enclosing contour in the Forest, or -1.
	// Depth is the nesting level: 0 for outer boundaries, 1 for their holes,
	// 2 for solid regions inside holes, and so on.
	Parent int
	Depth  int
}

// IsHole reports whether the contour bounds enclosed empty space.
func (c *Contour) IsHole() bool {
	return c.Depth%2 == 1
}

// Translate returns a copy shifted by (dx, dy).
func (c *Contour) Translate(dx, dy int) *Contour {
	out := *c
	out.Points = geometry.TranslatePoints(c.Points, dx, dy)
	out.BBox = c.BBox.Translate(dx, dy)
	out.Centroid = c.Centroid.Add(geometry.Point2D{X: float64(dx), Y: float64(dy)})
	return &out
}

// Rasterize paints the filled contour into a fresh bitmap of the given size.
func (c *Contour) Rasterize(width, height int) *raster.Bitmap {
	b := raster.New(width, height)
	b.DrawPolygon(c.Points, 255, -1)
	return b
}

// ContainsDisc reports whether a filled disc of the given radius centered at
// p lies entirely inside the contour.
func (c *Contour) ContainsDisc(p geometry.Point2D, radius float64) bool {
	pv := gocv.NewPointVectorFromPoints(c.Points)
	defer pv.Close()
	dist := gocv.PointPolygonTest(pv, p.ToInt(), true)
	return dist >= radius
}

// Forest is the set of contours found on one raster, with hierarchy.
type Forest struct {
	Contours []*Contour
}

// Extract finds all contours of the binary bitmap, including nested holes.
func Extract(b *raster.Bitmap) *Forest {
	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	pv := gocv.FindContoursWithParams(b.Mat(), &hierarchy, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer pv.Close()

	n := pv.Size()
	forest := &Forest{Contours: make([]*Contour, 0, n)}

	// hierarchy entries are [next, prev, firstChild, parent]
	parents := make([]int, n)
	for i := 0; i < n; i++ {
		parents[i] = int(hierarchy.GetVeciAt(0, i)[3])
	}

	for i := 0; i < n; i++ {
		points := pv.At(i).ToPoints()
		depth := 0
		for p := parents[i]; p >= 0; p = parents[p] {
			depth++
		}
		forest.Contours = append(forest.Contours, &Contour{
			Points:    points,
			BBox:      geometry.BoundingBoxInt(points),
			Area:      geometry.PolygonArea(points),
			Perimeter: geometry.PolygonPerimeter(points),
			Centroid:  geometry.PolygonCentroid(points),
			Parent:    parents[i],
			Depth:     depth,
		})
	}
	return forest
}

// Outer returns the depth-0 contours (solid region boundaries).
func (f *Forest) Outer() []*Contour {
	var out []*Contour
	for _, c := range f.Contours {
		if c.Depth == 0 {
			out = append(out, c)
		}
	}
	return out
}

// Holes returns the contours that enclose empty space at any depth.
func (f *Forest) Holes() []*Contour {
	var out []*Contour
	for _, c := range f.Contours {
		if c.IsHole() {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOf returns the contours directly enclosed by contour i; for an
// outer boundary these are its holes.
func (f *Forest) ChildrenOf(i int) []*Contour {
	var out []*Contour
	for _, c := range f.Contours {
		if c.Parent == i {
			out = append(out, c)
		}
	}
	return out
}

// DrawFilled paints the given contours, filled, onto dst.
func DrawFilled(dst *raster.Bitmap, contours []*Contour, value uint8) {
	for _, c := range contours {
		dst.DrawPolygon(c.Points, value, -1)
	}
}

// Intersect reports whether the filled interiors of two contours share at
// least one pixel. Bounding boxes are checked first; only the overlapping
// region is rasterized.
func Intersect(a, b *Contour) bool {
	common := a.BBox.Intersect(b.BBox)
	if common.IsEmpty() {
		return false
	}

	w, h := common.Width, common.Height
	ra := raster.New(w, h)
	defer ra.Close()
	rb := raster.New(w, h)
	defer rb.Close()

	ra.DrawPolygon(geometry.TranslatePoints(a.Points, -common.X, -common.Y), 255, -1)
	rb.DrawPolygon(geometry.TranslatePoints(b.Points, -common.X, -common.Y), 255, -1)

	return ra.OverlapCount(rb) > 0
}
