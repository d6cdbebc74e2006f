package detect

import (
	"sort"

	"github.com/pauljmelia/slicecheck/internal/contour"
)

// trapContour is one hollow-region candidate with a stable identity used for
// grouping across layers.
type trapContour struct {
	id    int
	layer int
	c     *contour.Contour
}

// trapGroups merges candidate contours that are geometrically connected
// across consecutive layers into groups. It is a disjoint-set keyed by
// contour identity: matching a candidate against a group performs a union.
//
// Connectivity is only ever tested against the most recent member of each
// group, on the candidate's layer or the adjacent one. A trap that narrows
// to nothing and widens again therefore splits into separate groups; that
// matches how drainage actually behaves, since the pinch seals the two
// halves from each other.
type trapGroups struct {
	parent  map[int]int
	members map[int][]*trapContour // root id -> members in insertion order
	last    map[int]*trapContour   // root id -> most recently added member
	roots   []int                  // live roots in creation order
}

func newTrapGroups() *trapGroups {
	return &trapGroups{
		parent:  make(map[int]int),
		members: make(map[int][]*trapContour),
		last:    make(map[int]*trapContour),
	}
}

func (g *trapGroups) find(id int) int {
	for g.parent[id] != id {
		g.parent[id] = g.parent[g.parent[id]]
		id = g.parent[id]
	}
	return id
}

// matchingRoots returns the groups whose most recent member lies on the
// candidate's layer or an adjacent one and geometrically intersects it.
func (g *trapGroups) matchingRoots(tc *trapContour) []int {
	var matched []int
	for _, root := range g.roots {
		lastMember, ok := g.last[root]
		if !ok {
			continue // root was merged or removed
		}
		dl := lastMember.layer - tc.layer
		if dl < -1 || dl > 1 {
			continue
		}
		if contour.Intersect(lastMember.c, tc.c) {
			matched = append(matched, root)
		}
	}
	return matched
}

// add inserts a confirmed candidate: no match creates a new group, one match
// appends, multiple matches merge all matched groups plus the candidate.
func (g *trapGroups) add(tc *trapContour) {
	g.parent[tc.id] = tc.id
	matched := g.matchingRoots(tc)

	if len(matched) == 0 {
		g.members[tc.id] = []*trapContour{tc}
		g.last[tc.id] = tc
		g.roots = append(g.roots, tc.id)
		return
	}

	// Merge everything into the first matched root.
	root := matched[0]
	for _, other := range matched[1:] {
		g.parent[other] = root
		g.members[root] = append(g.members[root], g.members[other]...)
		delete(g.members, other)
		delete(g.last, other)
	}
	g.parent[tc.id] = root
	g.members[root] = append(g.members[root], tc)
	g.last[root] = tc
}

// convertIntersecting removes every group the candidate matches and returns
// their members. Used when a candidate turns out to be air-connected: the
// whole connected blob changes classification with it.
func (g *trapGroups) convertIntersecting(tc *trapContour) []*trapContour {
	var converted []*trapContour
	for _, root := range g.matchingRoots(tc) {
		converted = append(converted, g.members[root]...)
		delete(g.members, root)
		delete(g.last, root)
	}
	return converted
}

// groups returns the live groups, each ordered by insertion, in a
// deterministic order (by smallest member id).
func (g *trapGroups) groups() [][]*trapContour {
	var out [][]*trapContour
	for _, root := range g.roots {
		if ms, ok := g.members[root]; ok {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0].id < out[j][0].id })
	return out
}

// allMembers flattens every live group into one list ordered by contour id.
func (g *trapGroups) allMembers() []*trapContour {
	var out []*trapContour
	for _, ms := range g.groups() {
		out = append(out, ms...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
