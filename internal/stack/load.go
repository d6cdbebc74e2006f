package stack

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/tiff"

	"github.com/pauljmelia/slicecheck/internal/raster"
)

// SupportedFormats returns the slice image formats the loader accepts.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// LoadDirectory builds a stack from a directory of per-layer slice images.
// Files are ordered alphanumerically, bottom layer first, matching how
// slicers export layer sequences.
func LoadDirectory(dir string, machine Machine) (*Stack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slice directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedFormat(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no slice images found in %s", dir)
	}
	sort.Strings(paths)

	s := New(machine)
	for _, path := range paths {
		b, err := loadRaster(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("layer %d (%s): %w", s.Count(), filepath.Base(path), err)
		}
		if machine.DisplayWidth == 0 {
			s.Machine.DisplayWidth = b.Width()
			s.Machine.DisplayHeight = b.Height()
		}
		s.AddLayer(b)
	}
	return s, nil
}

func loadRaster(path string) (*raster.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return raster.FromImage(img), nil
}
