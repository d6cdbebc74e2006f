package detect

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary condenses a detection result for reporting.
type Summary struct {
	Count  int
	ByType map[IssueType]int

	// Area statistics over all aggregate issues, in the units each issue
	// type reports (pixels, or pixel-millimeters for traps and cups).
	MeanArea   float64
	StdDevArea float64
	MedianArea float64
	MaxArea    float64
}

// Summarize computes counts per type and area statistics for a result set.
func Summarize(issues []AggregateIssue) Summary {
	s := Summary{Count: len(issues), ByType: make(map[IssueType]int)}
	if len(issues) == 0 {
		return s
	}

	areas := make([]float64, 0, len(issues))
	for _, is := range issues {
		s.ByType[is.Type]++
		areas = append(areas, is.Area)
		if is.Area > s.MaxArea {
			s.MaxArea = is.Area
		}
	}
	sort.Float64s(areas)

	s.MeanArea = stat.Mean(areas, nil)
	if len(areas) > 1 {
		s.StdDevArea = stat.StdDev(areas, nil)
	}
	s.MedianArea = stat.Quantile(0.5, stat.Empirical, areas, nil)
	return s
}
