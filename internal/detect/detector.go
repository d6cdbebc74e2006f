package detect

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pauljmelia/slicecheck/internal/stack"
)

// Detector runs the full defect analysis against one layer stack. Results
// are rebuilt from scratch on every Detect call; the caller-maintained
// ignore list survives across runs.
type Detector struct {
	Stack         *stack.Stack
	IgnoredIssues []AggregateIssue

	// Issues holds the last detection result, sorted.
	Issues []AggregateIssue
}

// New creates a detector for the given stack.
func New(s *stack.Stack) *Detector {
	return &Detector{Stack: s}
}

// Detect runs every enabled detector and returns the merged, filtered and
// sorted aggregate issues. A partially materialized stack refuses to run and
// yields an empty result. Cancellation through progress returns the already
// merged partial result with a nil error.
func (d *Detector) Detect(cfg Config, progress *Progress) ([]AggregateIssue, error) {
	d.Issues = nil
	if d.Stack == nil || !d.Stack.FullyLoaded() {
		if cfg.Verbose {
			fmt.Printf("[Detect] Layer stack not fully materialized, refusing to run\n")
		}
		return nil, nil
	}

	n := d.Stack.Count()
	perLayerEnabled := cfg.Island.Enabled || cfg.Overhang.Enabled || cfg.TouchingBound.Enabled

	total := 0
	if perLayerEnabled {
		total += n
	}
	if cfg.ResinTrap.Enabled {
		total += 2 * n
	}
	progress.Reset(total)

	var merged []AggregateIssue

	if perLayerEnabled {
		merged = append(merged, d.analyzeLayers(&cfg, progress)...)
	}

	if cfg.ResinTrap.Enabled && progress.checkpoint() {
		a := newAirMapAnalyzer(d.Stack, cfg.ResinTrap, cfg.Workers, cfg.Verbose)
		resin, cups, ok := a.run(progress)
		if ok {
			merged = append(merged, resin...)
			merged = append(merged, cups...)
		}
	}

	if cfg.PrintHeight.Enabled {
		merged = append(merged, d.detectPrintHeight(cfg.PrintHeight)...)
	}
	if cfg.EmptyLayer.Enabled {
		merged = append(merged, d.detectEmptyLayers()...)
	}

	merged = d.dropIgnored(merged)
	sortAggregates(merged)
	d.Issues = merged

	if cfg.Verbose {
		fmt.Printf("[Detect] %d issues across %d layers\n", len(merged), n)
	}
	return merged, nil
}

// analyzeLayers fans the independent per-layer detectors out over all layers
// and folds each single-layer finding into its own aggregate.
func (d *Detector) analyzeLayers(cfg *Config, progress *Progress) []AggregateIssue {
	n := d.Stack.Count()
	firstNonEmpty := d.Stack.FirstNonEmptyLayer()
	layerHeight := d.Stack.Machine.LayerHeight

	perLayer := make([][]Issue, n)
	parallelFor(cfg.Workers, n, func(i int) {
		if !progress.checkpoint() {
			return
		}
		defer progress.Increment()

		cur := d.Stack.Layer(i)
		var prev *stack.Layer
		if i > 0 {
			prev = d.Stack.Layer(i - 1)
		}
		var issues []Issue

		if cfg.TouchingBound.Enabled {
			if is := detectTouchingBounds(cur, d.Stack.Machine, cfg.TouchingBound); is != nil {
				issues = append(issues, *is)
			}
		}
		if cfg.Overhang.Enabled && prev != nil && i > firstNonEmpty {
			issues = append(issues, detectOverhangs(cur, prev, cfg.Overhang)...)
		}
		if cfg.Island.Enabled && prev != nil && islandLayerAllowed(&cfg.Island, i) {
			issues = append(issues, detectIslands(cur, prev, cfg.Island, cfg.Overhang)...)
		}
		perLayer[i] = issues
	})

	var out []AggregateIssue
	for i := 0; i < n; i++ {
		for _, is := range perLayer[i] {
			out = append(out, newAggregate(is.Type, []Issue{is}, layerHeight))
		}
	}
	return out
}

func islandLayerAllowed(cfg *IslandConfig, layer int) bool {
	if len(cfg.Layers) == 0 {
		return true
	}
	for _, l := range cfg.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// detectPrintHeight flags every layer printed above the machine's usable
// build height plus tolerance. One aggregate covers all offending layers.
func (d *Detector) detectPrintHeight(cfg PrintHeightConfig) []AggregateIssue {
	maxZ := d.Stack.Machine.MaxZ
	if maxZ <= 0 {
		return nil
	}
	limit := maxZ + cfg.Offset

	var issues []Issue
	for i := 0; i < d.Stack.Count(); i++ {
		layer := d.Stack.Layer(i)
		if layer.Z <= limit {
			continue
		}
		issues = append(issues, Issue{
			Type:       TypePrintHeight,
			LayerIndex: i,
			BBox:       layer.Bounds,
			Area:       float64(layer.Bounds.Area()),
		})
	}
	if len(issues) == 0 {
		return nil
	}
	return []AggregateIssue{newAggregate(TypePrintHeight, issues, d.Stack.Machine.LayerHeight)}
}

// detectEmptyLayers reports layers without printable content. A run of
// contiguous empty layers forms one aggregate. The kind is derived from the
// layer's surroundings: starting when everything below is empty too, ending
// when everything above is, loose otherwise.
func (d *Detector) detectEmptyLayers() []AggregateIssue {
	n := d.Stack.Count()
	if n == 0 {
		return nil
	}

	// prefixEmpty[i]: layers 0..i are all empty. suffixEmpty[i]: i..last are.
	prefixEmpty := make([]bool, n)
	suffixEmpty := make([]bool, n)
	allBelow := true
	for i := 0; i < n; i++ {
		allBelow = allBelow && d.Stack.Layer(i).IsEmpty
		prefixEmpty[i] = allBelow
	}
	allAbove := true
	for i := n - 1; i >= 0; i-- {
		allAbove = allAbove && d.Stack.Layer(i).IsEmpty
		suffixEmpty[i] = allAbove
	}

	var out []AggregateIssue
	var run []Issue
	flush := func() {
		if len(run) > 0 {
			out = append(out, newAggregate(TypeEmptyLayer, run, d.Stack.Machine.LayerHeight))
			run = nil
		}
	}

	for i := 0; i < n; i++ {
		layer := d.Stack.Layer(i)
		if !layer.IsEmpty || layer.IsDummy {
			flush()
			continue
		}
		kind := EmptyLayerLoose
		switch {
		case prefixEmpty[i]:
			kind = EmptyLayerStarting
		case suffixEmpty[i]:
			kind = EmptyLayerEnding
		}
		if len(run) > 0 && run[len(run)-1].EmptyKind != kind {
			flush()
		}
		run = append(run, Issue{Type: TypeEmptyLayer, LayerIndex: i, EmptyKind: kind})
	}
	flush()
	return out
}

// dropIgnored removes aggregates structurally equal to an ignore-list entry.
func (d *Detector) dropIgnored(issues []AggregateIssue) []AggregateIssue {
	if len(d.IgnoredIssues) == 0 {
		return issues
	}
	kept := issues[:0]
	for i := range issues {
		ignored := false
		for j := range d.IgnoredIssues {
			if issues[i].Equal(&d.IgnoredIssues[j]) {
				ignored = true
				break
			}
		}
		if !ignored {
			kept = append(kept, issues[i])
		}
	}
	return kept
}

// parallelFor runs fn(0..n-1) on a bounded pool of goroutines. A worker
// count below 1 uses one worker per CPU.
func parallelFor(workers, n int, fn func(i int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(idx)
		}(i)
	}
	wg.Wait()
}
