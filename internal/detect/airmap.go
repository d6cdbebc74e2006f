package detect

import (
	"fmt"

	"github.com/pauljmelia/slicecheck/internal/contour"
	"github.com/pauljmelia/slicecheck/internal/raster"
	"github.com/pauljmelia/slicecheck/internal/stack"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// airMapAnalyzer runs the two-pass air-connectivity propagation that decides
// which hollow regions are sealed resin traps, which are suction cups and
// which drain safely.
//
// Both passes advance a single rolling air map one layer at a time; the state
// dependency makes the layer loop strictly sequential. Within one layer every
// hollow contour is tested read-only against a frozen snapshot of the map,
// concurrently, and all map mutations for that layer are applied afterwards
// from this goroutine.
type airMapAnalyzer struct {
	s       *stack.Stack
	cfg     ResinTrapConfig
	workers int
	verbose bool

	// region crops all work to the model's bounding rect, inflated so an
	// open-air ring always surrounds the outermost contours.
	region geometry.RectInt

	outer       [][]*contour.Contour // per layer: outer contours, region coords
	provisional [][]*trapContour     // per layer: pass-1 resin trap candidates
	nextID      int
}

type trapDecision int

const (
	decisionTrap  trapDecision = iota // zero air overlap: sealed
	decisionAir                       // overlap at or above the drain threshold
	decisionSolid                     // partial overlap below the threshold
)

func newAirMapAnalyzer(s *stack.Stack, cfg ResinTrapConfig, workers int, verbose bool) *airMapAnalyzer {
	if cfg.StartLayerIndex < 0 {
		cfg.StartLayerIndex = 0
	}
	display := geometry.NewRectInt(0, 0, s.Machine.DisplayWidth, s.Machine.DisplayHeight)
	return &airMapAnalyzer{
		s:           s,
		cfg:         cfg,
		workers:     workers,
		verbose:     verbose,
		region:      s.BoundingRect().Inflate(2, display),
		outer:       make([][]*contour.Contour, s.Count()),
		provisional: make([][]*trapContour, s.Count()),
	}
}

// run executes both passes and the final classification. It returns the
// resin trap and suction cup aggregates, or ok=false when the run was
// canceled before both passes completed; a half-formed grouping is never
// reported.
func (a *airMapAnalyzer) run(progress *Progress) (resin, cups []AggregateIssue, ok bool) {
	if a.s.Count() == 0 || a.cfg.StartLayerIndex > a.s.LastLayerIndex() || a.region.IsEmpty() {
		return nil, nil, true
	}

	if !a.pass1(progress) {
		return nil, nil, false
	}
	groups, suction, ok := a.pass2(progress)
	if !ok {
		return nil, nil, false
	}
	resin, cups = a.classify(groups, suction)
	return resin, cups, true
}

// layerBin returns the binarized crop of layer i over the analysis region.
func (a *airMapAnalyzer) layerBin(i int) *raster.Bitmap {
	crop := a.s.CroppedRaster(i, a.region)
	defer crop.Close()
	return crop.Threshold(a.cfg.BinaryThreshold)
}

// contribution computes a layer's air contribution: the inverse of its solid
// raster with its own outer contours painted back in as solid. What remains
// is the air genuinely outside the model outline on this layer.
func contribution(bin *raster.Bitmap, outer []*contour.Contour) *raster.Bitmap {
	air := bin.Not()
	contour.DrawFilled(air, outer, 0)
	return air
}

// pass1 walks bottom to top, accumulating air reachability and recording
// every hollow contour with zero air overlap as a provisional resin trap.
func (a *airMapAnalyzer) pass1(progress *Progress) bool {
	last := a.s.LastLayerIndex()
	var airMap *raster.Bitmap
	defer func() {
		if airMap != nil {
			airMap.Close()
		}
	}()

	for i := a.cfg.StartLayerIndex; i <= last; i++ {
		if !progress.checkpoint() {
			return false
		}

		bin := a.layerBin(i)
		forest := contour.Extract(bin)
		a.outer[i] = forest.Outer()

		air := contribution(bin, a.outer[i])
		if airMap == nil {
			airMap = air
		} else {
			// Remove the current layer's solid, then re-admit its own
			// open regions.
			airMap.SubtractAssign(bin)
			airMap.OrAssign(air)
			air.Close()
		}

		var hollows []*contour.Contour
		for _, c := range forest.Holes() {
			if c.Area >= float64(a.cfg.RequiredAreaToProcess) {
				hollows = append(hollows, c)
			}
		}

		if len(hollows) > 0 {
			rasters := make([]*raster.Bitmap, len(hollows))
			decisions := make([]trapDecision, len(hollows))
			parallelFor(a.workers, len(hollows), func(j int) {
				rasters[j] = hollows[j].Rasterize(a.region.Width, a.region.Height)
				overlap := airMap.OverlapCount(rasters[j])
				switch {
				case overlap == 0:
					decisions[j] = decisionTrap
				case overlap >= a.cfg.RequiredPixelsToDrain:
					decisions[j] = decisionAir
				default:
					decisions[j] = decisionSolid
				}
			})

			for j, hollow := range hollows {
				switch decisions[j] {
				case decisionTrap:
					a.provisional[i] = append(a.provisional[i],
						&trapContour{id: a.nextID, layer: i, c: hollow})
					a.nextID++
				case decisionAir:
					airMap.OrAssign(rasters[j])
				case decisionSolid:
					airMap.SubtractAssign(rasters[j])
				}
				rasters[j].Close()
			}
		}

		bin.Close()
		progress.Increment()
	}

	if a.verbose {
		candidates := 0
		for _, p := range a.provisional {
			candidates += len(p)
		}
		fmt.Printf("[ResinTrap] Pass 1 done: %d provisional trap contours\n", candidates)
	}
	return true
}

// pass2 walks top to bottom with a fresh air map seeded as the top layer's
// full inverse (the top is always open). Only pass-1 provisional traps are
// retested: sufficient overlap reclassifies a contour (and every group it
// touches) as a suction cup; the rest are confirmed resin traps and enter
// cross-layer grouping.
func (a *airMapAnalyzer) pass2(progress *Progress) (*trapGroups, []*trapContour, bool) {
	last := a.s.LastLayerIndex()
	start := a.cfg.StartLayerIndex

	topBin := a.layerBin(last)
	airMap := topBin.Not()
	topBin.Close()
	defer airMap.Close()

	groups := newTrapGroups()
	var suction []*trapContour

	for i := last; i >= start; i-- {
		if !progress.checkpoint() {
			return nil, nil, false
		}

		if i < last {
			bin := a.layerBin(i)
			air := contribution(bin, a.outer[i])
			airMap.SubtractAssign(bin)
			airMap.OrAssign(air)
			bin.Close()
			air.Close()
		}

		candidates := a.provisional[i]
		if len(candidates) == 0 {
			progress.Increment()
			continue
		}

		rasters := make([]*raster.Bitmap, len(candidates))
		drained := make([]bool, len(candidates))
		parallelFor(a.workers, len(candidates), func(j int) {
			rasters[j] = candidates[j].c.Rasterize(a.region.Width, a.region.Height)
			drained[j] = airMap.OverlapCount(rasters[j]) >= a.cfg.RequiredPixelsToDrain
		})

		for j, tc := range candidates {
			if drained[j] {
				airMap.OrAssign(rasters[j])
				// A drained candidate pulls every trap group it touches
				// out of the resin trap set with it: the whole connected
				// cavity reaches open air. Reporting the converted
				// contours as suction cups is a separate toggle.
				converted := groups.convertIntersecting(tc)
				if a.cfg.DetectSuctionCups {
					suction = append(suction, tc)
					suction = append(suction, converted...)
				}
			} else {
				groups.add(tc)
			}
			rasters[j].Close()
		}
		progress.Increment()
	}

	if a.verbose {
		fmt.Printf("[ResinTrap] Pass 2 done: %d trap groups, %d suction contours\n",
			len(groups.groups()), len(suction))
	}
	return groups, suction, true
}
