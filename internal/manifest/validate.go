package manifest

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"regexp"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// Validate checks internal consistency and that every referenced file exists
// under baseDir with the stated size and pixel dimensions. It returns one
// message per problem found.
func Validate(m *Manifest, baseDir string) []string {
	var errs []string

	if m.TotalImages != len(m.Images) {
		errs = append(errs, fmt.Sprintf("totalImages mismatch: %d != %d images", m.TotalImages, len(m.Images)))
	}
	if sum := sumCounts(m.Formats); sum != m.TotalImages {
		errs = append(errs, fmt.Sprintf("formats sum to %d, totalImages is %d", sum, m.TotalImages))
	}
	if m.Roles != nil {
		if sum := sumCounts(m.Roles); sum != m.TotalImages {
			errs = append(errs, fmt.Sprintf("roles sum to %d, totalImages is %d", sum, m.TotalImages))
		}
	}

	seenIDs := map[string]bool{}
	seenPaths := map[string]bool{}
	formatCounts := map[string]int{}
	for i, e := range m.Images {
		prefix := fmt.Sprintf("images[%d] %q", i, e.Filename)
		formatCounts[e.Format]++

		if !idPattern.MatchString(e.ID) {
			errs = append(errs, fmt.Sprintf("%s: malformed id %q", prefix, e.ID))
		} else if seenIDs[e.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate id %q", prefix, e.ID))
		}
		seenIDs[e.ID] = true

		switch e.Orientation {
		case "landscape", "portrait", "square":
		default:
			errs = append(errs, fmt.Sprintf("%s: invalid orientation %q", prefix, e.Orientation))
		}
		if e.Filename == "" || e.Format == "" {
			errs = append(errs, fmt.Sprintf("%s: missing filename or format", prefix))
			continue
		}

		rel := e.RelPath()
		if seenPaths[rel] {
			errs = append(errs, fmt.Sprintf("%s: duplicate path %q", prefix, rel))
		}
		seenPaths[rel] = true

		errs = append(errs, checkFile(prefix, filepath.Join(baseDir, filepath.FromSlash(rel)), e)...)
	}

	for f, n := range formatCounts {
		if m.Formats[f] != n {
			errs = append(errs, fmt.Sprintf("formats[%q] = %d, images list %d", f, m.Formats[f], n))
		}
	}
	return errs
}

func checkFile(prefix, path string, e Entry) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("%s: file not found: %s", prefix, e.RelPath())}
	}
	defer f.Close()

	var errs []string
	if info, err := f.Stat(); err == nil && e.FileSize > 0 && info.Size() != e.FileSize {
		errs = append(errs, fmt.Sprintf("%s: size mismatch: manifest=%d, disk=%d", prefix, e.FileSize, info.Size()))
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return append(errs, fmt.Sprintf("%s: undecodable: %v", prefix, err))
	}
	if cfg.Width != e.Dimensions.Width || cfg.Height != e.Dimensions.Height {
		errs = append(errs, fmt.Sprintf("%s: dimensions mismatch: manifest=%dx%d, disk=%dx%d",
			prefix, e.Dimensions.Width, e.Dimensions.Height, cfg.Width, cfg.Height))
	}
	return errs
}

func sumCounts(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
