package raster

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// Component is one connected region of non-zero pixels.
type Component struct {
	Label      int
	PixelCount int
	BBox       geometry.RectInt
	Centroid   geometry.Point2D
}

// Labeling holds a connected-component decomposition. Close it after use.
type Labeling struct {
	labels     gocv.Mat
	Components []Component
}

// ConnectedComponents labels the connected regions of the binary bitmap using
// 4- or 8-connectivity. The background component (label 0) is excluded.
func (b *Bitmap) ConnectedComponents(connectivity int) *Labeling {
	if connectivity != 4 {
		connectivity = 8
	}

	labels := gocv.NewMat()
	stats := gocv.NewMat()
	centroids := gocv.NewMat()
	defer stats.Close()
	defer centroids.Close()

	count := gocv.ConnectedComponentsWithStatsWithParams(b.mat, &labels, &stats, &centroids,
		connectivity, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	l := &Labeling{labels: labels}
	for i := 1; i < count; i++ {
		// stats columns: left, top, width, height, area
		l.Components = append(l.Components, Component{
			Label:      i,
			PixelCount: int(stats.GetIntAt(i, 4)),
			BBox: geometry.RectInt{
				X:      int(stats.GetIntAt(i, 0)),
				Y:      int(stats.GetIntAt(i, 1)),
				Width:  int(stats.GetIntAt(i, 2)),
				Height: int(stats.GetIntAt(i, 3)),
			},
			Centroid: geometry.Point2D{
				X: centroids.GetDoubleAt(i, 0),
				Y: centroids.GetDoubleAt(i, 1),
			},
		})
	}
	return l
}

// Close releases the label matrix.
func (l *Labeling) Close() {
	l.labels.Close()
}

// LabelAt returns the component label at (x, y); 0 is background.
func (l *Labeling) LabelAt(x, y int) int {
	return int(l.labels.GetIntAt(y, x))
}

// Pixels collects the coordinates belonging to the component, scanning only
// its bounding box.
func (l *Labeling) Pixels(c Component) []image.Point {
	points := make([]image.Point, 0, c.PixelCount)
	for y := c.BBox.Y; y < c.BBox.Y+c.BBox.Height; y++ {
		for x := c.BBox.X; x < c.BBox.X+c.BBox.Width; x++ {
			if l.LabelAt(x, y) == c.Label {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	return points
}
