package detect

import (
	"sort"

	"github.com/pauljmelia/slicecheck/internal/contour"
)

// classify turns the finished pass-2 state into reportable aggregates.
// Coordinates are translated from the analysis region back to full-layer
// space here, after both passes have completed.
//
// The two branches are independent: resin trap contours are regrouped with
// the same adjacency rule for reporting, discarding anything that touches
// the plate layer; suction cup contours are regrouped and gated on both the
// area and height minimums.
func (a *airMapAnalyzer) classify(groups *trapGroups, suction []*trapContour) (resin, cups []AggregateIssue) {
	layerHeight := a.s.Machine.LayerHeight

	for _, members := range regroup(a.translate(groups.allMembers())) {
		if members[0].layer == 0 {
			continue // resting on the plate; resin can escape when lifted
		}
		resin = append(resin, a.buildAggregate(TypeResinTrap, members, layerHeight))
	}

	if a.cfg.DetectSuctionCups {
		for _, members := range regroup(a.translate(suction)) {
			maxArea := 0.0
			for _, tc := range members {
				if tc.c.Area > maxArea {
					maxArea = tc.c.Area
				}
			}
			height := float64(members[len(members)-1].layer-members[0].layer+1) * layerHeight
			if maxArea < a.cfg.SuctionCupRequiredArea || height < a.cfg.SuctionCupRequiredHeight {
				continue
			}
			cups = append(cups, a.buildAggregate(TypeSuctionCup, members, layerHeight))
		}
	}
	return resin, cups
}

// translate moves candidate contours from analysis-region coordinates back
// to full-layer space.
func (a *airMapAnalyzer) translate(members []*trapContour) []*trapContour {
	out := make([]*trapContour, len(members))
	for i, tc := range members {
		out[i] = &trapContour{id: tc.id, layer: tc.layer, c: tc.c.Translate(a.region.X, a.region.Y)}
	}
	return out
}

// regroup re-derives cross-layer connectivity bottom-up over a finished
// contour set using the same most-recent-member adjacency rule as pass 2.
// Groups come back ordered by layer.
func regroup(members []*trapContour) [][]*trapContour {
	sorted := make([]*trapContour, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].layer != sorted[j].layer {
			return sorted[i].layer < sorted[j].layer
		}
		return sorted[i].id < sorted[j].id
	})

	g := newTrapGroups()
	for _, tc := range sorted {
		g.add(tc)
	}

	out := g.groups()
	for _, ms := range out {
		sort.Slice(ms, func(i, j int) bool { return ms[i].layer < ms[j].layer })
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0].layer != out[j][0].layer {
			return out[i][0].layer < out[j][0].layer
		}
		return out[i][0].id < out[j][0].id
	})
	return out
}

// buildAggregate folds one group into an aggregate issue with one child
// issue per member layer.
func (a *airMapAnalyzer) buildAggregate(t IssueType, members []*trapContour, layerHeight float64) AggregateIssue {
	byLayer := make(map[int][]*contour.Contour)
	var layers []int
	for _, tc := range members {
		if _, seen := byLayer[tc.layer]; !seen {
			layers = append(layers, tc.layer)
		}
		byLayer[tc.layer] = append(byLayer[tc.layer], tc.c)
	}
	sort.Ints(layers)

	issues := make([]Issue, 0, len(layers))
	for _, layer := range layers {
		is := Issue{Type: t, LayerIndex: layer, Contours: byLayer[layer]}
		for _, c := range byLayer[layer] {
			is.BBox = is.BBox.Union(c.BBox)
			is.Area += c.Area
		}
		issues = append(issues, is)
	}
	return newAggregate(t, issues, layerHeight)
}
