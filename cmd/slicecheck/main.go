// Command slicecheck analyzes a sliced resin print job for manufacturing
// defects: islands, overhangs, resin traps, suction cups, touching bounds,
// print height violations and empty layers.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/pauljmelia/slicecheck/internal/detect"
	"github.com/pauljmelia/slicecheck/internal/stack"
)

func main() {
	// Optional .env machine profile; flags below override it.
	_ = godotenv.Load()

	sliceDir := flag.String("slices", "", "Directory of per-layer slice images (png, jpeg, tiff)")
	layerHeight := flag.Float64("layer-height", envFloat("SLICECHECK_LAYER_HEIGHT", 0.05), "Layer height in mm")
	maxZ := flag.Float64("max-z", envFloat("SLICECHECK_MAX_Z", 0), "Machine build height in mm (0 disables the print height check)")
	displayWidth := flag.Int("display-width", 0, "Machine display width in px (0 = from first slice)")
	displayHeight := flag.Int("display-height", 0, "Machine display height in px (0 = from first slice)")
	workers := flag.Int("workers", 0, "Parallel layer workers (0 = all CPUs)")
	verbose := flag.Bool("verbose", false, "Print per-stage progress")

	islands := flag.Bool("islands", true, "Detect islands")
	overhangs := flag.Bool("overhangs", true, "Detect overhangs")
	resinTraps := flag.Bool("resin-traps", true, "Detect resin traps")
	suctionCups := flag.Bool("suction-cups", true, "Detect suction cups")
	touching := flag.Bool("touching-bounds", true, "Detect touching bounds")
	margin := flag.Int("margin", 5, "Touching-bounds margin in pixels on every side")
	drainPixels := flag.Int("drain-pixels", 30, "Air-map overlap at which a hollow region counts as drained")
	ventDiameter := flag.Int("drill-vents", 0, "Drill suction cup vents of this diameter in pixels and report drill points")
	flag.Parse()

	if *sliceDir == "" {
		fmt.Println("Usage: slicecheck -slices <dir> [-layer-height 0.05] [-max-z 0] [flags]")
		os.Exit(2)
	}

	machine := stack.Machine{
		DisplayWidth:  *displayWidth,
		DisplayHeight: *displayHeight,
		LayerHeight:   *layerHeight,
		MaxZ:          *maxZ,
	}
	s, err := stack.LoadDirectory(*sliceDir, machine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load slices: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	fmt.Printf("Loaded %d layers, %dx%d px, %.3f mm/layer, print height %.2f mm\n",
		s.Count(), s.Machine.DisplayWidth, s.Machine.DisplayHeight,
		s.Machine.LayerHeight, s.PrintHeight())

	cfg := detect.DefaultConfig()
	cfg.Workers = *workers
	cfg.Verbose = *verbose
	cfg.Island.Enabled = *islands
	cfg.Overhang.Enabled = *overhangs
	cfg.ResinTrap.Enabled = *resinTraps
	cfg.ResinTrap.DetectSuctionCups = *suctionCups
	cfg.ResinTrap.RequiredPixelsToDrain = *drainPixels
	cfg.TouchingBound.Enabled = *touching
	cfg.TouchingBound.MarginLeft = *margin
	cfg.TouchingBound.MarginRight = *margin
	cfg.TouchingBound.MarginTop = *margin
	cfg.TouchingBound.MarginBottom = *margin
	cfg.PrintHeight.Enabled = *maxZ > 0

	for _, warning := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	detector := detect.New(s)
	issues, err := detector.Detect(cfg, detect.NewProgress())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(2)
	}

	if len(issues) == 0 {
		fmt.Println("No issues found.")
		return
	}

	fmt.Printf("\nFound %d issues:\n", len(issues))
	fmt.Printf("%-14s %8s %8s %12s %10s %22s\n",
		"Type", "Layers", "Span", "Area", "Height", "Bounds")
	for _, is := range issues {
		fmt.Printf("%-14s %4d-%-4d %8d %12.1f %9.2fmm %22s\n",
			is.Type, is.StartLayer, is.EndLayer, is.LayerSpan(), is.Area, is.Height,
			fmt.Sprintf("(%d,%d %dx%d)", is.BBox.X, is.BBox.Y, is.BBox.Width, is.BBox.Height))
	}

	summary := detect.Summarize(issues)
	fmt.Printf("\nSummary:\n")
	for t := detect.TypeIsland; t <= detect.TypeEmptyLayer; t++ {
		if n := summary.ByType[t]; n > 0 {
			fmt.Printf("  %-14s %d\n", t, n)
		}
	}
	fmt.Printf("  Area mean %.1f, stddev %.1f, median %.1f, max %.1f\n",
		summary.MeanArea, summary.StdDevArea, summary.MedianArea, summary.MaxArea)

	if *ventDiameter > 0 {
		cups := detect.FilterByType(issues, detect.TypeSuctionCup)
		drilled, err := detector.DrillSuctionCups(cups, *ventDiameter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Drilling failed: %v\n", err)
			os.Exit(2)
		}
		fmt.Printf("\nDrilled %d of %d suction cups:\n", len(drilled), len(cups))
		for _, r := range drilled {
			fmt.Printf("  layers %d-%d vent at (%d,%d)\n",
				r.Issue.StartLayer, r.Issue.EndLayer, r.Point.X, r.Point.Y)
		}
	}

	os.Exit(1)
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
