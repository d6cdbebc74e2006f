package detect

import (
	"fmt"
	"image"

	"github.com/pauljmelia/slicecheck/internal/contour"
	"github.com/pauljmelia/slicecheck/internal/stack"
)

// DrillResult records one successfully drilled suction cup.
type DrillResult struct {
	Issue AggregateIssue
	Point image.Point
}

// DrillSuctionCups computes a vent drill point for each suction cup issue
// and hands the raster write-back to the layer stack in one batch. The drill
// point is the lowest member contour's centroid, used only when a disc of
// the vent radius centered there lies fully inside that contour; issues
// where it does not are skipped. The vent is carved from the issue's lowest
// member layer down to the plate so the cavity can drain.
func (d *Detector) DrillSuctionCups(issues []AggregateIssue, ventDiameter int) ([]DrillResult, error) {
	radius := ventDiameter / 2
	if radius < 1 {
		return nil, fmt.Errorf("vent diameter %d is below the 2 pixel minimum", ventDiameter)
	}

	var drilled []DrillResult
	var mods []stack.Modification

	for _, issue := range issues {
		if issue.Type != TypeSuctionCup || len(issue.Issues) == 0 {
			continue
		}

		bottom := issue.Issues[0]
		c := largestContour(bottom.Contours)
		if c == nil || !c.ContainsDisc(c.Centroid, float64(radius)) {
			continue
		}

		point := c.Centroid.ToInt()
		for layer := bottom.LayerIndex; layer >= 0; layer-- {
			mods = append(mods, stack.Modification{
				LayerIndex: layer,
				Center:     point,
				Radius:     radius,
				Value:      0,
			})
		}
		drilled = append(drilled, DrillResult{Issue: issue, Point: point})
	}

	if len(mods) > 0 {
		if err := d.Stack.ApplyModifications(mods); err != nil {
			return nil, fmt.Errorf("applying drill vents: %w", err)
		}
	}
	return drilled, nil
}

func largestContour(contours []*contour.Contour) *contour.Contour {
	var best *contour.Contour
	for _, c := range contours {
		if best == nil || c.Area > best.Area {
			best = c
		}
	}
	return best
}
