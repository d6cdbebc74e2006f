package detect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	issues := []AggregateIssue{
		{Type: TypeIsland, Area: 10},
		{Type: TypeIsland, Area: 20},
		{Type: TypeResinTrap, Area: 60},
	}
	s := Summarize(issues)

	require.Equal(t, 3, s.Count)
	require.Equal(t, 2, s.ByType[TypeIsland])
	require.Equal(t, 1, s.ByType[TypeResinTrap])
	require.InDelta(t, 30.0, s.MeanArea, 1e-9)
	require.InDelta(t, 20.0, s.MedianArea, 1e-9)
	require.InDelta(t, 60.0, s.MaxArea, 1e-9)
	require.Greater(t, s.StdDevArea, 0.0)
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize([]AggregateIssue{{Type: TypeOverhang, Area: 42}})
	require.Equal(t, 1, s.Count)
	require.InDelta(t, 42.0, s.MeanArea, 1e-9)
	require.InDelta(t, 42.0, s.MaxArea, 1e-9)
	require.Equal(t, 0.0, s.StdDevArea)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	require.Equal(t, 0, s.Count)
	require.Empty(t, s.ByType)
	require.Equal(t, 0.0, s.MeanArea)
}
