// Package raster provides the binary raster value used by all detectors.
// It wraps an 8-bit single-channel OpenCV matrix behind a small fixed surface
// (bitwise ops, threshold, erode, connected components, drawing, counting) so
// the detection logic never touches the vision library directly.
package raster

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// Bitmap is an 8-bit single-channel raster. The zero value is not usable;
// construct with New, NewFilled, FromMat or FromImage. Callers own the
// lifetime and must Close bitmaps they create.
type Bitmap struct {
	mat gocv.Mat
}

// New creates a zeroed bitmap of the given size.
func New(width, height int) *Bitmap {
	return &Bitmap{mat: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)}
}

// NewFilled creates a bitmap with every pixel set to value.
func NewFilled(width, height int, value uint8) *Bitmap {
	scalar := gocv.NewScalar(float64(value), 0, 0, 0)
	return &Bitmap{mat: gocv.NewMatWithSizeFromScalar(scalar, height, width, gocv.MatTypeCV8U)}
}

// FromMat wraps an existing single-channel matrix. The bitmap takes ownership.
func FromMat(mat gocv.Mat) *Bitmap {
	return &Bitmap{mat: mat}
}

// FromImage converts a Go image to a grayscale bitmap.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma, 16-bit channels down to 8
			gray := (299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000
			b.mat.SetUCharAt(y, x, uint8(gray))
		}
	}
	return b
}

// Close releases the underlying matrix.
func (b *Bitmap) Close() {
	if b != nil && !b.mat.Empty() {
		b.mat.Close()
	}
}

// Mat exposes the underlying matrix for contour extraction. Read-only.
func (b *Bitmap) Mat() gocv.Mat {
	return b.mat
}

// Width returns the raster width in pixels.
func (b *Bitmap) Width() int {
	return b.mat.Cols()
}

// Height returns the raster height in pixels.
func (b *Bitmap) Height() int {
	return b.mat.Rows()
}

// Rect returns the full raster rectangle at origin.
func (b *Bitmap) Rect() geometry.RectInt {
	return geometry.RectInt{Width: b.Width(), Height: b.Height()}
}

// Clone returns an independent copy.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{mat: b.mat.Clone()}
}

// Get returns the pixel value at (x, y).
func (b *Bitmap) Get(x, y int) uint8 {
	return b.mat.GetUCharAt(y, x)
}

// Set writes the pixel value at (x, y).
func (b *Bitmap) Set(x, y int, value uint8) {
	b.mat.SetUCharAt(y, x, value)
}

// Crop returns a copy of the given region.
func (b *Bitmap) Crop(r geometry.RectInt) *Bitmap {
	region := b.mat.Region(r.ToImageRect())
	defer region.Close()
	return &Bitmap{mat: region.Clone()}
}

// CountNonZero returns the number of non-zero pixels.
func (b *Bitmap) CountNonZero() int {
	return gocv.CountNonZero(b.mat)
}

// Threshold returns a binary bitmap: pixels >= t become 255, others 0.
func (b *Bitmap) Threshold(t uint8) *Bitmap {
	dst := gocv.NewMat()
	gocv.Threshold(b.mat, &dst, float32(t)-0.5, 255, gocv.ThresholdBinary)
	return &Bitmap{mat: dst}
}

// Not returns the bitwise inverse.
func (b *Bitmap) Not() *Bitmap {
	dst := gocv.NewMat()
	gocv.BitwiseNot(b.mat, &dst)
	return &Bitmap{mat: dst}
}

// And returns the bitwise intersection with other.
func (b *Bitmap) And(other *Bitmap) *Bitmap {
	dst := gocv.NewMat()
	gocv.BitwiseAnd(b.mat, other.mat, &dst)
	return &Bitmap{mat: dst}
}

// Or returns the bitwise union with other.
func (b *Bitmap) Or(other *Bitmap) *Bitmap {
	dst := gocv.NewMat()
	gocv.BitwiseOr(b.mat, other.mat, &dst)
	return &Bitmap{mat: dst}
}

// Subtract returns b minus other, saturating at zero.
func (b *Bitmap) Subtract(other *Bitmap) *Bitmap {
	dst := gocv.NewMat()
	gocv.Subtract(b.mat, other.mat, &dst)
	return &Bitmap{mat: dst}
}

// OrAssign unions other into b in place.
func (b *Bitmap) OrAssign(other *Bitmap) {
	gocv.BitwiseOr(b.mat, other.mat, &b.mat)
}

// SubtractAssign removes other's non-zero pixels from b in place.
func (b *Bitmap) SubtractAssign(other *Bitmap) {
	gocv.Subtract(b.mat, other.mat, &b.mat)
}

// OverlapCount returns the number of pixels non-zero in both bitmaps.
func (b *Bitmap) OverlapCount(other *Bitmap) int {
	tmp := b.And(other)
	defer tmp.Close()
	return tmp.CountNonZero()
}

// Erode shrinks non-zero regions with a 3x3 rectangular kernel for the given
// number of iterations.
func (b *Bitmap) Erode(iterations int) *Bitmap {
	if iterations <= 0 {
		return b.Clone()
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	dst := gocv.NewMat()
	gocv.ErodeWithParams(b.mat, &dst, kernel, image.Point{X: -1, Y: -1}, iterations, int(gocv.BorderConstant))
	return &Bitmap{mat: dst}
}

// DrawPolygon paints a closed polygon onto the bitmap. A negative thickness
// fills the interior.
func (b *Bitmap) DrawPolygon(polygon []image.Point, value uint8, thickness int) {
	if len(polygon) < 3 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{polygon})
	defer pv.Close()
	c := color.RGBA{R: value, G: value, B: value, A: 255}
	gocv.DrawContours(&b.mat, pv, 0, c, thickness)
}

// DrawCircle paints a circle onto the bitmap. A negative thickness fills it.
func (b *Bitmap) DrawCircle(center image.Point, radius int, value uint8, thickness int) {
	c := color.RGBA{R: value, G: value, B: value, A: 255}
	gocv.Circle(&b.mat, center, radius, c, thickness)
}

// OccupiedRect returns the tight bounding rectangle of all non-zero pixels,
// or an empty rectangle for a blank raster.
func (b *Bitmap) OccupiedRect() geometry.RectInt {
	w, h := b.Width(), b.Height()
	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if b.mat.GetUCharAt(y, x) == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}
