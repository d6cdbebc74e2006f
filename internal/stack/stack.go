// Package stack manages the ordered sequence of per-layer rasters that make
// up a sliced print job.
package stack

import (
	"fmt"
	"image"

	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// Layer is a single cross-section of the job. Rasters are read-only during
// detection; only ApplyModifications writes to them.
type Layer struct {
	Index   int
	Z       float64 // millimeters above the plate
	Raster  *raster.Bitmap
	Bounds  geometry.RectInt // tight bounding rect of non-zero pixels
	IsEmpty bool
	IsDummy bool // placeholder layer carrying no printable content
}

// Stack is an ordered, randomly addressable sequence of layers.
type Stack struct {
	Machine Machine
	layers  []*Layer
	bounds  geometry.RectInt
}

// Machine describes the printer the job is sliced for.
type Machine struct {
	DisplayWidth  int     // pixels
	DisplayHeight int     // pixels
	LayerHeight   float64 // millimeters
	MaxZ          float64 // millimeters of usable build height
}

// New creates an empty stack for the given machine.
func New(machine Machine) *Stack {
	return &Stack{Machine: machine}
}

// AddLayer appends a layer raster to the top of the stack. A nil raster adds
// a placeholder for a layer that has not been materialized.
func (s *Stack) AddLayer(b *raster.Bitmap) *Layer {
	layer := &Layer{
		Index: len(s.layers),
		Z:     float64(len(s.layers)+1) * s.Machine.LayerHeight,
	}
	if b != nil {
		layer.Raster = b
		layer.Bounds = b.OccupiedRect()
		layer.IsEmpty = layer.Bounds.IsEmpty()
		s.bounds = s.bounds.Union(layer.Bounds)
	}
	s.layers = append(s.layers, layer)
	return layer
}

// Count returns the number of layers.
func (s *Stack) Count() int {
	return len(s.layers)
}

// LastLayerIndex returns the index of the topmost layer.
func (s *Stack) LastLayerIndex() int {
	return len(s.layers) - 1
}

// Layer returns the layer at index i.
func (s *Stack) Layer(i int) *Layer {
	return s.layers[i]
}

// BoundingRect returns the union of all layers' occupied rectangles.
func (s *Stack) BoundingRect() geometry.RectInt {
	return s.bounds
}

// FullyLoaded reports whether every layer's raster is materialized.
func (s *Stack) FullyLoaded() bool {
	for _, l := range s.layers {
		if l.Raster == nil {
			return false
		}
	}
	return len(s.layers) > 0
}

// PrintHeight returns the Z of the topmost layer, in millimeters.
func (s *Stack) PrintHeight() float64 {
	if len(s.layers) == 0 {
		return 0
	}
	return s.layers[len(s.layers)-1].Z
}

// FirstNonEmptyLayer returns the index of the lowest layer with printable
// content, or -1 when the stack is entirely empty.
func (s *Stack) FirstNonEmptyLayer() int {
	for _, l := range s.layers {
		if l.Raster != nil && !l.IsEmpty && !l.IsDummy {
			return l.Index
		}
	}
	return -1
}

// CroppedRaster returns a copy of layer i restricted to the given rectangle.
func (s *Stack) CroppedRaster(i int, r geometry.RectInt) *raster.Bitmap {
	return s.layers[i].Raster.Crop(r)
}

// Modification is one raster write request: paint a filled circle of the
// given value on one layer.
type Modification struct {
	LayerIndex int
	Center     image.Point
	Radius     int
	Value      uint8
}

// ApplyModifications performs a batch of raster writes and refreshes the
// affected layers' bounds and empty flags.
func (s *Stack) ApplyModifications(mods []Modification) error {
	touched := make(map[int]bool)
	for _, m := range mods {
		if m.LayerIndex < 0 || m.LayerIndex >= len(s.layers) {
			return fmt.Errorf("modification targets layer %d of %d", m.LayerIndex, len(s.layers))
		}
		layer := s.layers[m.LayerIndex]
		if layer.Raster == nil {
			return fmt.Errorf("modification targets unmaterialized layer %d", m.LayerIndex)
		}
		if !layer.Raster.Rect().Contains(m.Center.X, m.Center.Y) {
			return fmt.Errorf("modification center (%d,%d) outside layer %d raster",
				m.Center.X, m.Center.Y, m.LayerIndex)
		}
		layer.Raster.DrawCircle(m.Center, m.Radius, m.Value, -1)
		touched[m.LayerIndex] = true
	}

	for i := range touched {
		layer := s.layers[i]
		layer.Bounds = layer.Raster.OccupiedRect()
		layer.IsEmpty = layer.Bounds.IsEmpty()
	}
	return nil
}

// Close releases every layer raster.
func (s *Stack) Close() {
	for _, l := range s.layers {
		if l.Raster != nil {
			l.Raster.Close()
			l.Raster = nil
		}
	}
}
