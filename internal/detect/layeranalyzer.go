package detect

import (
	"image"

	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/internal/stack"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// detectTouchingBounds reports solid pixels inside the configured margins of
// the build area. Returns nil when no margin is touched.
func detectTouchingBounds(layer *stack.Layer, machine stack.Machine, cfg TouchingBoundConfig) *Issue {
	if layer.IsEmpty || layer.Raster == nil {
		return nil
	}

	w, h := machine.DisplayWidth, machine.DisplayHeight
	full := geometry.NewRectInt(0, 0, w, h)
	bands := []geometry.RectInt{
		geometry.NewRectInt(0, 0, cfg.MarginLeft, h),
		geometry.NewRectInt(w-cfg.MarginRight, 0, cfg.MarginRight, h),
		geometry.NewRectInt(0, 0, w, cfg.MarginTop),
		geometry.NewRectInt(0, h-cfg.MarginBottom, w, cfg.MarginBottom),
	}

	var points []image.Point
	seen := make(map[image.Point]bool)
	for _, band := range bands {
		scan := band.Intersect(full).Intersect(layer.Bounds)
		if scan.IsEmpty() {
			continue
		}
		for y := scan.Y; y < scan.Y+scan.Height; y++ {
			for x := scan.X; x < scan.X+scan.Width; x++ {
				if layer.Raster.Get(x, y) < cfg.MinimumBrightness {
					continue
				}
				p := image.Point{X: x, Y: y}
				if seen[p] {
					continue
				}
				seen[p] = true
				points = append(points, p)
			}
		}
	}
	if len(points) == 0 {
		return nil
	}

	return &Issue{
		Type:       TypeTouchingBound,
		LayerIndex: layer.Index,
		BBox:       geometry.BoundingBoxInt(points),
		Area:       float64(len(points)),
		Points:     points,
	}
}

// overhangMask computes the overhang evidence over the given region: the
// current layer minus the previous one, thresholded to binary and eroded.
// Coordinates in the result are relative to region's origin.
func overhangMask(cur, prev *stack.Layer, region geometry.RectInt, cfg OverhangConfig) *raster.Bitmap {
	curCrop := cur.Raster.Crop(region)
	defer curCrop.Close()
	prevCrop := prev.Raster.Crop(region)
	defer prevCrop.Close()

	diff := curCrop.Subtract(prevCrop)
	defer diff.Close()
	bin := diff.Threshold(cfg.BinaryThreshold)
	defer bin.Close()
	return bin.Erode(cfg.ErodeIterations)
}

// detectOverhangs finds material on the current layer that extends past the
// previous layer beyond the erosion tolerance. The caller skips the first
// layer and anything at or below the first non-empty layer.
func detectOverhangs(cur, prev *stack.Layer, cfg OverhangConfig) []Issue {
	if cur.IsEmpty || cur.Raster == nil || prev.Raster == nil {
		return nil
	}

	region := cur.Bounds.Union(prev.Bounds)
	if region.IsEmpty() {
		return nil
	}

	mask := overhangMask(cur, prev, region, cfg)
	defer mask.Close()
	if mask.CountNonZero() == 0 {
		return nil
	}

	labeling := mask.ConnectedComponents(8)
	defer labeling.Close()

	var issues []Issue
	for _, comp := range labeling.Components {
		if comp.PixelCount < cfg.RequiredPixels {
			continue
		}
		points := geometry.TranslatePoints(labeling.Pixels(comp), region.X, region.Y)
		issues = append(issues, Issue{
			Type:       TypeOverhang,
			LayerIndex: cur.Index,
			BBox:       comp.BBox.Translate(region.X, region.Y),
			Area:       float64(comp.PixelCount),
			Points:     points,
		})
	}
	return issues
}

// detectIslands finds connected components on the current layer without
// enough support from the previous one. The caller skips the plate layer.
func detectIslands(cur, prev *stack.Layer, cfg IslandConfig, overhangCfg OverhangConfig) []Issue {
	if cur.IsEmpty || cur.Raster == nil || prev.Raster == nil {
		return nil
	}

	bin := cur.Raster.Threshold(cfg.BinaryThreshold)
	defer bin.Close()

	labeling := bin.ConnectedComponents(cfg.Connectivity)
	defer labeling.Close()

	var issues []Issue
	for _, comp := range labeling.Components {
		if comp.PixelCount < cfg.RequiredAreaToProcess {
			continue
		}

		points := labeling.Pixels(comp)
		supported := 0
		for _, p := range points {
			if prev.Raster.Get(p.X, p.Y) >= cfg.RequiredSupportBrightness {
				supported++
			}
		}

		required := float64(comp.PixelCount) * cfg.SupportMultiplier
		if required < 1 {
			required = 1
		}
		if float64(supported) >= required {
			continue
		}

		if cfg.EnhancedMode && !overlapsOverhang(cur, prev, comp, labeling, overhangCfg) {
			// Disconnected in-plane, but the material above the previous
			// layer thins out gradually: supported through an overhang.
			continue
		}

		issues = append(issues, Issue{
			Type:       TypeIsland,
			LayerIndex: cur.Index,
			BBox:       comp.BBox,
			Area:       float64(comp.PixelCount),
			Points:     points,
		})
	}
	return issues
}

// overlapsOverhang recomputes overhang evidence around the candidate
// component and reports whether any of it lands on the component itself.
func overlapsOverhang(cur, prev *stack.Layer, comp raster.Component, labeling *raster.Labeling, cfg OverhangConfig) bool {
	limit := cur.Raster.Rect()
	region := comp.BBox.Inflate(10, limit)
	if region.IsEmpty() {
		return false
	}

	mask := overhangMask(cur, prev, region, cfg)
	defer mask.Close()
	if mask.CountNonZero() == 0 {
		return false
	}

	for y := comp.BBox.Y; y < comp.BBox.Y+comp.BBox.Height; y++ {
		for x := comp.BBox.X; x < comp.BBox.X+comp.BBox.Width; x++ {
			if labeling.LabelAt(x, y) != comp.Label {
				continue
			}
			if mask.Get(x-region.X, y-region.Y) != 0 {
				return true
			}
		}
	}
	return false
}
