package geometry

import (
	"image"
	"math"
)

// PolygonArea computes the area enclosed by a closed integer polygon using
// the shoelace formula. The result equals the polygon's zeroth moment and is
// always non-negative.
func PolygonArea(polygon []image.Point) float64 {
	if len(polygon) < 3 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(polygon[i].X)*float64(polygon[j].Y) -
			float64(polygon[j].X)*float64(polygon[i].Y)
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter computes the length of the closed polygon boundary.
func PolygonPerimeter(polygon []image.Point) float64 {
	if len(polygon) < 2 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dx := float64(polygon[j].X - polygon[i].X)
		dy := float64(polygon[j].Y - polygon[i].Y)
		sum += math.Sqrt(dx*dx + dy*dy)
	}
	return sum
}

// PolygonCentroid computes the area-weighted centroid of a closed polygon.
// Degenerate polygons (zero area) fall back to the vertex average.
func PolygonCentroid(polygon []image.Point) Point2D {
	if len(polygon) == 0 {
		return Point2D{}
	}

	var cx, cy, signedArea float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := float64(polygon[i].X)*float64(polygon[j].Y) -
			float64(polygon[j].X)*float64(polygon[i].Y)
		signedArea += cross
		cx += (float64(polygon[i].X) + float64(polygon[j].X)) * cross
		cy += (float64(polygon[i].Y) + float64(polygon[j].Y)) * cross
	}

	if math.Abs(signedArea) < 1e-10 {
		var sumX, sumY float64
		for _, p := range polygon {
			sumX += float64(p.X)
			sumY += float64(p.Y)
		}
		return Point2D{X: sumX / float64(n), Y: sumY / float64(n)}
	}

	signedArea /= 2
	return Point2D{X: cx / (6 * signedArea), Y: cy / (6 * signedArea)}
}

// BoundingBoxInt computes the axis-aligned bounding box of a point set.
func BoundingBoxInt(points []image.Point) RectInt {
	if len(points) == 0 {
		return RectInt{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// TranslatePoints shifts every point by (dx, dy), returning a new slice.
func TranslatePoints(points []image.Point, dx, dy int) []image.Point {
	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = image.Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}
