// Package detect implements the pre-print defect detection engine: per-layer
// island, overhang and touching-bounds analysis, the two-pass air-map
// propagation that separates resin traps from suction cups, and the
// orchestration that merges, filters and sorts the results.
package detect

import (
	"image"
	"sort"

	"github.com/pauljmelia/slicecheck/internal/contour"
	"github.com/pauljmelia/slicecheck/pkg/geometry"
)

// IssueType identifies a defect category. The numeric order is the report
// order.
type IssueType int

const (
	TypeIsland IssueType = iota
	TypeOverhang
	TypeResinTrap
	TypeSuctionCup
	TypeTouchingBound
	TypePrintHeight
	TypeEmptyLayer
)

func (t IssueType) String() string {
	switch t {
	case TypeIsland:
		return "Island"
	case TypeOverhang:
		return "Overhang"
	case TypeResinTrap:
		return "ResinTrap"
	case TypeSuctionCup:
		return "SuctionCup"
	case TypeTouchingBound:
		return "TouchingBound"
	case TypePrintHeight:
		return "PrintHeight"
	case TypeEmptyLayer:
		return "EmptyLayer"
	default:
		return "Unknown"
	}
}

// EmptyLayerKind says where an empty layer sits relative to the model.
type EmptyLayerKind int

const (
	EmptyLayerLoose EmptyLayerKind = iota
	EmptyLayerStarting
	EmptyLayerEnding
)

func (k EmptyLayerKind) String() string {
	switch k {
	case EmptyLayerStarting:
		return "starting"
	case EmptyLayerEnding:
		return "ending"
	default:
		return "loose"
	}
}

// Issue is one defect on one layer. Depending on the type it carries either
// the offending pixel set or the offending contours.
type Issue struct {
	Type       IssueType
	LayerIndex int
	BBox       geometry.RectInt
	Area       float64
	Points     []image.Point
	Contours   []*contour.Contour
	EmptyKind  EmptyLayerKind // only meaningful for TypeEmptyLayer
}

// AggregateIssue is one logical 3-D defect: same-type issues on adjacent
// layers joined into a single reportable record.
type AggregateIssue struct {
	Type       IssueType
	Issues     []Issue // ordered by layer index
	BBox       geometry.RectInt
	Area       float64
	StartLayer int
	EndLayer   int
	Height     float64 // millimeters, derived from layer Z
}

// LayerSpan returns the number of layers the issue covers.
func (a *AggregateIssue) LayerSpan() int {
	return a.EndLayer - a.StartLayer + 1
}

// Equal reports structural equality, used to match ignore-list entries.
func (a *AggregateIssue) Equal(other *AggregateIssue) bool {
	return a.Type == other.Type &&
		a.StartLayer == other.StartLayer &&
		a.EndLayer == other.EndLayer &&
		a.BBox == other.BBox &&
		a.Area == other.Area
}

// newAggregate builds an aggregate from child issues, computing the union
// bounding rect and the start/end layers. Area handling differs by type:
// resin traps and suction cups report an enclosed volume (summed child area
// times layer height); everything else sums child areas.
func newAggregate(t IssueType, issues []Issue, layerHeight float64) AggregateIssue {
	sort.Slice(issues, func(i, j int) bool { return issues[i].LayerIndex < issues[j].LayerIndex })

	agg := AggregateIssue{
		Type:       t,
		Issues:     issues,
		StartLayer: issues[0].LayerIndex,
		EndLayer:   issues[len(issues)-1].LayerIndex,
	}
	for _, is := range issues {
		agg.BBox = agg.BBox.Union(is.BBox)
		agg.Area += is.Area
	}
	agg.Height = float64(agg.LayerSpan()) * layerHeight
	if t == TypeResinTrap || t == TypeSuctionCup {
		agg.Area *= layerHeight
	}
	return agg
}

// sortAggregates orders the final report: type ascending, then start layer
// ascending, then area descending. Bounding box position breaks remaining
// ties so repeated runs produce identical orderings.
func sortAggregates(issues []AggregateIssue) {
	sort.Slice(issues, func(i, j int) bool {
		a, b := &issues[i], &issues[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.StartLayer != b.StartLayer {
			return a.StartLayer < b.StartLayer
		}
		if a.Area != b.Area {
			return a.Area > b.Area
		}
		if a.BBox.Y != b.BBox.Y {
			return a.BBox.Y < b.BBox.Y
		}
		return a.BBox.X < b.BBox.X
	})
}

// FilterByType returns the aggregates of the given type.
func FilterByType(issues []AggregateIssue, t IssueType) []AggregateIssue {
	var out []AggregateIssue
	for _, is := range issues {
		if is.Type == t {
			out = append(out, is)
		}
	}
	return out
}

// FilterByLayer returns the aggregates whose span covers the given layer.
func FilterByLayer(issues []AggregateIssue, layerIndex int) []AggregateIssue {
	var out []AggregateIssue
	for _, is := range issues {
		if layerIndex >= is.StartLayer && layerIndex <= is.EndLayer {
			out = append(out, is)
		}
	}
	return out
}
